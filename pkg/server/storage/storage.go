/* Copyright 2025 NoteBazaar Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package storage provides file storage for uploaded notes
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
)

// FileStore is an interface for storing uploaded files
type FileStore interface {
	// Save stores the given content under the given key and returns a URL
	// from which the file can be served.
	Save(key string, r io.Reader, contentType string) (string, error)
}

// S3Store stores files in an S3-compatible bucket
type S3Store struct {
	client *s3.S3
	bucket string
}

// S3Params are the parameters for creating a new S3Store
type S3Params struct {
	Bucket   string
	Region   string
	Endpoint string
}

// NewS3Store creates a file store backed by S3. A non-empty Endpoint enables
// path-style addressing for MinIO-compatible servers.
func NewS3Store(p S3Params) (*S3Store, error) {
	cfg := &aws.Config{
		Region: aws.String(p.Region),
	}
	if p.Endpoint != "" {
		cfg.Endpoint = aws.String(p.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating aws session")
	}

	return &S3Store{
		client: s3.New(sess),
		bucket: p.Bucket,
	}, nil
}

// Save is an implementation of FileStore.Save
func (s *S3Store) Save(key string, r io.Reader, contentType string) (string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "reading file content")
	}

	_, err = s.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(string(body)),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrap(err, "putting object")
	}

	endpoint := aws.StringValue(s.client.Config.Endpoint)
	if endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(endpoint, "/"), s.bucket, key), nil
	}

	region := aws.StringValue(s.client.Config.Region)
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, region, key), nil
}

// LocalStore stores files in a directory on the local filesystem. It is used
// when no S3 bucket is configured, and in tests.
type LocalStore struct {
	// Dir is the directory in which files are stored
	Dir string
	// BaseURL is the URL prefix from which stored files are served
	BaseURL string
}

// NewLocalStore creates a local file store rooted at the given directory
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating upload directory at %s", dir)
	}

	return &LocalStore{Dir: dir, BaseURL: baseURL}, nil
}

// Save is an implementation of FileStore.Save
func (s *LocalStore) Save(key string, r io.Reader, contentType string) (string, error) {
	dest := filepath.Join(s.Dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", errors.Wrap(err, "creating directory")
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "writing file")
	}

	return fmt.Sprintf("%s/uploads/%s", strings.TrimSuffix(s.BaseURL, "/"), key), nil
}
