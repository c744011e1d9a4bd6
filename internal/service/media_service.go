package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	cfg "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/repository"
)

// MediaService is the upload boundary: images land in R2 and come back as
// public URLs the publishing client can hand to the platform. Instagram
// fetches media by URL, so only image types are accepted here.
type MediaService interface {
	Upload(ctx context.Context, userID int64, file *multipart.FileHeader) (*models.MediaAsset, error)
	List(ctx context.Context, userID int64) ([]*models.MediaAsset, error)
}

type mediaService struct {
	config cfg.Config
	ma     repository.MediaAssetRepository
}

func NewMediaService(config cfg.Config, ma repository.MediaAssetRepository) MediaService {
	return &mediaService{config: config, ma: ma}
}

var allowedImageTypes = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {},
}

func (s *mediaService) Upload(ctx context.Context, userID int64, file *multipart.FileHeader) (*models.MediaAsset, error) {
	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return nil, errors.New("unsupported file type")
	}
	if _, ok := allowedImageTypes[fileType.Extension]; !ok {
		return nil, fmt.Errorf("file type %s is not allowed, only images can be published", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err := s.uploadToR2(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	ma := &models.MediaAsset{
		UserID:   userID,
		FileName: key,
		FileType: fileType.MIME.Value,
		FileSize: int64(len(fileBytes)),
		FileURL:  fmt.Sprintf("%s/%s", s.config.R2.PublicBaseURL, key),
	}

	assetID, err := s.ma.Create(ctx, ma)
	if err != nil {
		return nil, err
	}
	ma.ID = assetID

	return ma, nil
}

func (s *mediaService) List(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	assets, err := s.ma.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing media assets")
	}
	return assets, nil
}

func (s *mediaService) r2Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.config.R2.AccessKey, s.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.config.R2.AccountID))
	}), nil
}

func (s *mediaService) uploadToR2(ctx context.Context, key string, file []byte, contentType string) error {
	client, err := s.r2Client(ctx)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
