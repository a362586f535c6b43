package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"github.com/Winan03/AeroFlash-app/pkg/retry"
)

// Firebase is a Store backed by the Firebase Realtime Database. Idempotent
// calls are retried on transient errors; Push is not.
type Firebase struct {
	client *db.Client
	retry  *retry.Config
}

var _ Store = (*Firebase)(nil)

// NewFirebase initializes the Admin SDK. Credentials come from inline JSON,
// a file, or application default credentials, in that order.
func NewFirebase(ctx context.Context, cfg *Config) (*Firebase, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("docstore: firebase database url is required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		DatabaseURL: cfg.DatabaseURL,
		ProjectID:   cfg.ProjectID,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create database client: %w", err)
	}
	return &Firebase{client: client, retry: retry.StoreConfig()}, nil
}

func (f *Firebase) ref(path string) (*db.Ref, error) {
	if _, err := splitPath(path); err != nil {
		return nil, err
	}
	return f.client.NewRef(path), nil
}

func (f *Firebase) Get(ctx context.Context, path string, v interface{}) error {
	ref, err := f.ref(path)
	if err != nil {
		return err
	}
	var raw json.RawMessage
	err = retry.Do(ctx, f.retry, func(ctx context.Context) error {
		return ref.Get(ctx, &raw)
	})
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	if isNull(raw) {
		return ErrNotFound
	}
	return json.Unmarshal(raw, v)
}

func (f *Firebase) Set(ctx context.Context, path string, v interface{}) error {
	ref, err := f.ref(path)
	if err != nil {
		return err
	}
	if err := retry.Do(ctx, f.retry, func(ctx context.Context) error { return ref.Set(ctx, v) }); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func (f *Firebase) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	ref, err := f.ref(path)
	if err != nil {
		return err
	}
	if err := retry.Do(ctx, f.retry, func(ctx context.Context) error { return ref.Update(ctx, fields) }); err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	return nil
}

func (f *Firebase) Delete(ctx context.Context, path string) error {
	ref, err := f.ref(path)
	if err != nil {
		return err
	}
	if err := retry.Do(ctx, f.retry, func(ctx context.Context) error { return ref.Delete(ctx) }); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (f *Firebase) Push(ctx context.Context, path string, v interface{}) (string, error) {
	ref, err := f.ref(path)
	if err != nil {
		return "", err
	}
	child, err := ref.Push(ctx, v)
	if err != nil {
		return "", fmt.Errorf("push %s: %w", path, err)
	}
	return child.Key, nil
}

// QueryEqual needs an ".indexOn" rule for child on path.
func (f *Firebase) QueryEqual(ctx context.Context, path, child string, value interface{}, v interface{}) error {
	ref, err := f.ref(path)
	if err != nil {
		return err
	}
	var raw json.RawMessage
	err = retry.Do(ctx, f.retry, func(ctx context.Context) error {
		return ref.OrderByChild(child).EqualTo(value).Get(ctx, &raw)
	})
	if err != nil {
		return fmt.Errorf("query %s by %s: %w", path, child, err)
	}
	if isNull(raw) {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func (f *Firebase) Transaction(ctx context.Context, path string, fn UpdateFunc) error {
	ref, err := f.ref(path)
	if err != nil {
		return err
	}
	var aborted error
	err = retry.Do(ctx, f.retry, func(ctx context.Context) error {
		aborted = nil
		err := ref.Transaction(ctx, func(node db.TransactionNode) (interface{}, error) {
			out, err := fn(node)
			if err != nil {
				aborted = err
			}
			return out, err
		})
		if aborted != nil {
			return retry.Permanent(aborted)
		}
		return err
	})
	if aborted != nil {
		return aborted
	}
	if err != nil {
		return fmt.Errorf("transaction %s: %w", path, err)
	}
	return nil
}

func (f *Firebase) HealthCheck(ctx context.Context) error {
	return probe(ctx, f)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
