// Package anexos stores boleto and nota fiscal documents attached to
// solicitações in object storage and hands out presigned links.
package anexos

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"financehub/portal/internal/config"
	"financehub/portal/internal/ids"
)

const tamanhoMaximo = 10 << 20 // 10 MiB per document

var tiposPermitidos = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
}

type Service struct {
	client *minio.Client
	bucket string
	region string
	log    zerolog.Logger
}

func NewService(cfg config.StorageConfig, log zerolog.Logger) (*Service, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &Service{
		client: client,
		bucket: cfg.BucketAnexos,
		region: cfg.Region,
		log:    log.With().Str("service", "anexos").Logger(),
	}, nil
}

func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Upload stores one document under the solicitação and returns its object
// key. tipo names the slot on the record: "boleto" or "notaFiscal".
func (s *Service) Upload(ctx context.Context, solicitacaoID, tipo string, r io.Reader) (string, error) {
	if tipo != "boleto" && tipo != "notaFiscal" {
		return "", fmt.Errorf("tipo de anexo desconhecido: %s", tipo)
	}

	data, err := io.ReadAll(io.LimitReader(r, tamanhoMaximo+1))
	if err != nil {
		return "", fmt.Errorf("ler anexo: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("anexo vazio")
	}
	if len(data) > tamanhoMaximo {
		return "", fmt.Errorf("anexo excede %d bytes", tamanhoMaximo)
	}

	contentType := http.DetectContentType(data)
	ext, ok := tiposPermitidos[contentType]
	if !ok {
		return "", fmt.Errorf("tipo de arquivo não permitido: %s", contentType)
	}

	key := fmt.Sprintf("%s/%s-%s%s", solicitacaoID, tipo, ids.New(), ext)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("gravar anexo: %w", err)
	}

	s.log.Debug().Str("key", key).Int("bytes", len(data)).Msg("anexo gravado")
	return key, nil
}

// LinkTemporario returns a presigned GET URL for a stored document.
func (s *Service) LinkTemporario(ctx context.Context, key string, validade time.Duration) (string, error) {
	if validade <= 0 {
		validade = 15 * time.Minute
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, validade, nil)
	if err != nil {
		return "", fmt.Errorf("link temporário: %w", err)
	}
	return u.String(), nil
}
