package services

import (
	"aibot-backend/config"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoreArtifact re-hosts a generated artifact on OSS and returns its
// public URL. Vendor download links expire; our bucket does not.
//
// The input is either a vendor URL or a local file path (speech output
// lands on disk first). Inputs that cannot or need not be re-hosted
// come back unchanged with a nil error: mock references, empty paths
// and any path when OSS is not configured.
func StoreArtifact(fileURL string) (string, error) {
	if fileURL == "" || strings.HasPrefix(fileURL, "mock://") {
		return fileURL, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fileURL, err
	}
	if cfg.OSSEndpoint == "" || cfg.OSSBucketName == "" {
		return fileURL, nil
	}

	localPath := fileURL
	if strings.HasPrefix(fileURL, "http://") || strings.HasPrefix(fileURL, "https://") {
		downloaded, err := downloadToTemp(fileURL)
		if err != nil {
			return fileURL, err
		}
		defer os.Remove(downloaded)
		localPath = downloaded
	}

	url, err := uploadToOSS(cfg, localPath)
	if err != nil {
		return fileURL, err
	}

	// Local artifacts are throwaway once re-hosted.
	if localPath == fileURL {
		os.Remove(localPath)
	}
	return url, nil
}

func downloadToTemp(fileURL string) (string, error) {
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(fileURL)
	if err != nil {
		return "", fmt.Errorf("failed to download artifact: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("artifact download returned status %d", resp.StatusCode)
	}

	ext := filepath.Ext(strings.SplitN(fileURL, "?", 2)[0])
	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("artifact_%s%s", uuid.New().String(), ext))
	out, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to save artifact: %v", err)
	}
	return tmpPath, nil
}

func uploadToOSS(cfg *config.Config, localPath string) (string, error) {
	client, err := oss.New(
		cfg.OSSEndpoint,
		cfg.OSSAccessKey,
		cfg.OSSAccessSecret,
		oss.Timeout(60, 120),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create OSS client: %v", err)
	}

	bucket, err := client.Bucket(cfg.OSSBucketName)
	if err != nil {
		return "", fmt.Errorf("failed to get bucket: %v", err)
	}

	now := time.Now()
	objectKey := fmt.Sprintf("generations/%d/%02d/%s%s",
		now.Year(), now.Month(), uuid.New().String(), filepath.Ext(localPath))

	if err := bucket.PutObjectFromFile(objectKey, localPath); err != nil {
		return "", fmt.Errorf("upload failed: %v", err)
	}

	zap.L().Info("artifact re-hosted", zap.String("object_key", objectKey))
	return publicURL(cfg, objectKey), nil
}

func publicURL(cfg *config.Config, objectKey string) string {
	endpoint := cfg.OSSEndpoint
	scheme := "https"
	if strings.Contains(endpoint, "://") {
		parts := strings.SplitN(endpoint, "://", 2)
		scheme = parts[0]
		endpoint = parts[1]
	}
	return fmt.Sprintf("%s://%s.%s/%s", scheme, cfg.OSSBucketName, endpoint, objectKey)
}
