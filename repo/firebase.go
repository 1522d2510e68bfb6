package repo

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

const sessionsRef = "sessions"

// FirebaseTokenStore keeps session tokens in the Firebase Realtime Database
// under sessions/<userID>/token.
type FirebaseTokenStore struct {
	app    *firebase.App
	client *db.Client
}

// NewFirebaseTokenStore creates a token store backed by Firebase
func NewFirebaseTokenStore(ctx context.Context, serviceAccountKeyPath string, databaseURL string) (*FirebaseTokenStore, error) {
	// Load the service account key file
	opt := option.WithCredentialsFile(serviceAccountKeyPath)

	config := &firebase.Config{
		DatabaseURL: databaseURL,
	}
	app, err := firebase.NewApp(ctx, config, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting database client: %w", err)
	}

	return &FirebaseTokenStore{
		app:    app,
		client: client,
	}, nil
}

func (fs *FirebaseTokenStore) tokenRef(userID int64) *db.Ref {
	return fs.client.NewRef(sessionsRef).Child(strconv.FormatInt(userID, 10)).Child("token")
}

// GetToken returns "" when the user has no stored token.
func (fs *FirebaseTokenStore) GetToken(ctx context.Context, userID int64) (string, error) {
	var token string
	if err := fs.tokenRef(userID).Get(ctx, &token); err != nil {
		return "", fmt.Errorf("error reading token: %w", err)
	}
	return token, nil
}

func (fs *FirebaseTokenStore) SetToken(ctx context.Context, userID int64, token string) error {
	if err := fs.tokenRef(userID).Set(ctx, token); err != nil {
		return fmt.Errorf("error storing token: %w", err)
	}
	return nil
}

func (fs *FirebaseTokenStore) ClearToken(ctx context.Context, userID int64) error {
	if err := fs.tokenRef(userID).Delete(ctx); err != nil {
		return fmt.Errorf("error deleting token: %w", err)
	}
	return nil
}
