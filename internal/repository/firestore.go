package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Document is a raw document as read from a document database.
type Document struct {
	ID   string
	Data map[string]any
}

// DocumentClient is the slice of a document database DocumentStore needs.
// Get, Replace and Delete return ErrNotFound for missing documents.
type DocumentClient interface {
	List(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Create stores data under id, or under a generated id when id is
	// empty, and returns the id used.
	Create(ctx context.Context, collection, id string, data map[string]any) (string, error)
	Replace(ctx context.Context, collection, id string, data map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}

// FirestoreClient implements DocumentClient on Cloud Firestore.
type FirestoreClient struct {
	client *firestore.Client
}

func NewFirestoreClient(ctx context.Context, projectID string) (*FirestoreClient, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error creating firestore client: %w", err)
	}
	return &FirestoreClient{client: client}, nil
}

func (f *FirestoreClient) Close() error {
	return f.client.Close()
}

func (f *FirestoreClient) List(ctx context.Context, collection string) ([]Document, error) {
	snaps, err := f.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func (f *FirestoreClient) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := f.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return Document{}, firestoreErr(err, collection, id)
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (f *FirestoreClient) Create(ctx context.Context, collection, id string, data map[string]any) (string, error) {
	col := f.client.Collection(collection)
	ref := col.NewDoc()
	if id != "" {
		ref = col.Doc(id)
	}
	if _, err := ref.Create(ctx, data); err != nil {
		return "", firestoreErr(err, collection, ref.ID)
	}
	return ref.ID, nil
}

func (f *FirestoreClient) Replace(ctx context.Context, collection, id string, data map[string]any) error {
	ref := f.client.Collection(collection).Doc(id)
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, data)
	})
	if err != nil {
		return firestoreErr(err, collection, id)
	}
	return nil
}

func (f *FirestoreClient) Delete(ctx context.Context, collection, id string) error {
	if _, err := f.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		return firestoreErr(err, collection, id)
	}
	return nil
}

func firestoreErr(err error, collection, id string) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	case codes.AlreadyExists:
		return fmt.Errorf("%s/%s: %w", collection, id, ErrAlreadyExists)
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s/%s: %w", collection, id, err)
}
