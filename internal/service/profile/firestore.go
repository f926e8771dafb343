package profile

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	applog "github.com/janisto/huma-profile/internal/platform/logging"
)

const profilesCollection = "profiles"

type firestoreRecord struct {
	Name      string    `firestore:"name"`
	Phone     string    `firestore:"phone"`
	Address   string    `firestore:"address"`
	City      string    `firestore:"city"`
	AvatarURL string    `firestore:"avatar_url"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (fr firestoreRecord) toRecord(userID string) *Record {
	return &Record{
		ID:        userID,
		Name:      fr.Name,
		Phone:     fr.Phone,
		Address:   fr.Address,
		City:      fr.City,
		AvatarURL: fr.AvatarURL,
		CreatedAt: fr.CreatedAt,
		UpdatedAt: fr.UpdatedAt,
	}
}

// auditCategory maps errors to values that are safe to put in audit logs.
func auditCategory(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case status.Code(err) == codes.Unavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}

// FirestoreStore keeps one document per user in the profiles collection.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client, now: func() time.Time { return time.Now().UTC() }}
}

func (s *FirestoreStore) Get(ctx context.Context, userID string) (*Record, error) {
	doc, err := s.client.Collection(profilesCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var fr firestoreRecord
	if err := doc.DataTo(&fr); err != nil {
		return nil, err
	}
	return fr.toRecord(userID), nil
}

// Upsert writes the record in a transaction so created_at survives
// concurrent first writes.
func (s *FirestoreStore) Upsert(ctx context.Context, userID string, params UpsertParams) (*Record, error) {
	docRef := s.client.Collection(profilesCollection).Doc(userID)
	params = params.normalized()
	now := s.now()
	created := false

	var result *Record
	err := s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		createdAt := now
		doc, err := tx.Get(docRef)
		switch {
		case err == nil && doc.Exists():
			var existing firestoreRecord
			if err := doc.DataTo(&existing); err != nil {
				return err
			}
			if !existing.CreatedAt.IsZero() {
				createdAt = existing.CreatedAt
			}
		case err != nil && status.Code(err) != codes.NotFound:
			return err
		default:
			created = true
		}

		fr := firestoreRecord{
			Name:      params.Name,
			Phone:     params.Phone,
			Address:   params.Address,
			City:      params.City,
			AvatarURL: params.AvatarURL,
			CreatedAt: createdAt,
			UpdatedAt: now,
		}
		if err := tx.Set(docRef, fr); err != nil {
			return err
		}
		result = fr.toRecord(userID)
		return nil
	})
	if err != nil {
		applog.LogAuditEvent(ctx, applog.AuditEvent{
			Action: "upsert", UserID: userID, ResourceType: "profile", ResourceID: userID,
			Result:  applog.AuditFailure,
			Details: map[string]any{"error": auditCategory(err)},
		})
		return nil, err
	}

	applog.LogAuditEvent(ctx, applog.AuditEvent{
		Action: "upsert", UserID: userID, ResourceType: "profile", ResourceID: userID,
		Result:  applog.AuditSuccess,
		Details: map[string]any{"created": created},
	})
	return result, nil
}

var _ Store = (*FirestoreStore)(nil)
