package orchestrator

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/ankitsingh4634/taskify/internal/model"
	"github.com/ankitsingh4634/taskify/internal/store"
)

// ContactInput carries the raw fields of a contact create or update
// request. Emails and Phones arrive as lists and are flattened before
// storage.
type ContactInput struct {
	ContactID    int64
	FullName     string
	Emails       []string
	Phones       []string
	Address      string
	Organization string
	Title        string
}

// Contacts orchestrates the contact dual write.
type Contacts struct {
	store   ContactStore
	intents IntentLog
	sync    SyncClient
	logger  *log.Logger

	now    func() time.Time
	newUID func() string
}

// NewContacts creates a contact orchestrator. If logger is nil, a
// default logger writing to stderr is used.
func NewContacts(contactStore ContactStore, intents IntentLog, sync SyncClient, logger *log.Logger) *Contacts {
	if logger == nil {
		logger = log.New(os.Stderr, "[contacts] ", log.LstdFlags)
	}
	return &Contacts{
		store:   contactStore,
		intents: intents,
		sync:    sync,
		logger:  logger,
		now:     time.Now,
		newUID:  NewUID,
	}
}

// Create validates the input, mirrors the card to the remote address
// book, and only then inserts the local row. Returns the assigned
// contact id.
func (o *Contacts) Create(ctx context.Context, userID int64, in *ContactInput) (int64, error) {
	if in.FullName == "" {
		return 0, &ValidationError{Msg: "fullName is required"}
	}
	if model.FlattenMulti(in.Phones) == "" {
		return 0, &ValidationError{Msg: "at least one phone number is required"}
	}

	now := o.now()
	contact := &model.Contact{
		UserID:       userID,
		FullName:     in.FullName,
		Email:        model.FlattenMulti(in.Emails),
		Phone:        model.FlattenMulti(in.Phones),
		Address:      in.Address,
		Organization: in.Organization,
		Title:        in.Title,
		CardDAVUID:   o.newUID(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	intentID, err := o.intents.EnqueueIntent(ctx, &store.Intent{
		EntityType: store.EntityContact,
		UID:        contact.CardDAVUID,
		Op:         store.IntentOpUpsert,
	})
	if err != nil {
		return 0, &StoreError{Op: "create contact intent", Err: err}
	}

	if err := o.sync.PutContact(ctx, contact); err != nil {
		o.logger.Printf("CardDAV sync failed for new contact: %v", err)
		o.recordIntentError(ctx, intentID, err)
		return 0, &SyncError{Op: "create contact", Err: err}
	}

	id, err := o.store.CreateContact(ctx, contact)
	if err != nil {
		o.logger.Printf("local insert failed after CardDAV sync, uid=%s: %v", contact.CardDAVUID, err)
		o.recordIntentError(ctx, intentID, err)
		return 0, &StoreError{Op: "create contact", Err: err}
	}

	o.commitIntent(ctx, intentID)
	return id, nil
}

// Update re-puts the remote card at the contact's existing UID, then
// updates the local row. Unlike create, an update requires at least one
// email address. The returned noChanges flag is true when the store
// update affected zero rows.
func (o *Contacts) Update(ctx context.Context, userID int64, in *ContactInput) (noChanges bool, err error) {
	if in.ContactID == 0 {
		return false, &ValidationError{Msg: "contactId is required"}
	}
	if in.FullName == "" {
		return false, &ValidationError{Msg: "fullName is required"}
	}
	if model.FlattenMulti(in.Emails) == "" {
		return false, &ValidationError{Msg: "at least one email is required"}
	}

	uid, err := o.store.ContactUID(ctx, in.ContactID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return false, &NotFoundError{Resource: "contact"}
	}
	if err != nil {
		return false, &StoreError{Op: "look up contact", Err: err}
	}

	contact := &model.Contact{
		ID:           in.ContactID,
		UserID:       userID,
		FullName:     in.FullName,
		Email:        model.FlattenMulti(in.Emails),
		Phone:        model.FlattenMulti(in.Phones),
		Address:      in.Address,
		Organization: in.Organization,
		Title:        in.Title,
		CardDAVUID:   uid,
		UpdatedAt:    o.now(),
	}

	intentID, err := o.intents.EnqueueIntent(ctx, &store.Intent{
		EntityType: store.EntityContact,
		EntityID:   in.ContactID,
		UID:        uid,
		Op:         store.IntentOpUpsert,
	})
	if err != nil {
		return false, &StoreError{Op: "update contact intent", Err: err}
	}

	if err := o.sync.PutContact(ctx, contact); err != nil {
		o.logger.Printf("CardDAV sync failed for contact %d: %v", in.ContactID, err)
		o.recordIntentError(ctx, intentID, err)
		return false, &SyncError{Op: "update contact", Err: err}
	}

	rows, err := o.store.UpdateContact(ctx, contact)
	if err != nil {
		o.recordIntentError(ctx, intentID, err)
		return false, &StoreError{Op: "update contact", Err: err}
	}

	o.commitIntent(ctx, intentID)
	return rows == 0, nil
}

// Delete removes the local row first, then the remote card. A missing
// or foreign contact yields not-found before any transport.
func (o *Contacts) Delete(ctx context.Context, userID, contactID int64) error {
	if contactID == 0 {
		return &ValidationError{Msg: "contactId is required"}
	}

	uid, err := o.store.ContactUID(ctx, contactID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Resource: "contact"}
	}
	if err != nil {
		return &StoreError{Op: "look up contact", Err: err}
	}

	rows, err := o.store.DeleteContact(ctx, contactID, userID)
	if err != nil {
		return &StoreError{Op: "delete contact", Err: err}
	}
	if rows == 0 {
		return &NotFoundError{Resource: "contact"}
	}

	intentID, err := o.intents.EnqueueIntent(ctx, &store.Intent{
		EntityType: store.EntityContact,
		EntityID:   contactID,
		UID:        uid,
		Op:         store.IntentOpDelete,
	})
	if err != nil {
		return &StoreError{Op: "delete contact intent", Err: err}
	}

	if err := o.sync.DeleteContact(ctx, uid); err != nil {
		o.logger.Printf("CardDAV delete failed for contact %d, uid=%s: %v", contactID, uid, err)
		o.recordIntentError(ctx, intentID, err)
		return &SyncError{Op: "delete contact", Err: err}
	}

	o.commitIntent(ctx, intentID)
	return nil
}

// List returns the caller's contacts.
func (o *Contacts) List(ctx context.Context, userID int64) ([]model.Contact, error) {
	contacts, err := o.store.ListContacts(ctx, userID)
	if err != nil {
		return nil, &StoreError{Op: "list contacts", Err: err}
	}
	return contacts, nil
}

func (o *Contacts) recordIntentError(ctx context.Context, intentID int64, cause error) {
	if err := o.intents.RecordIntentError(ctx, intentID, cause.Error()); err != nil {
		o.logger.Printf("failed to record intent error: %v", err)
	}
}

func (o *Contacts) commitIntent(ctx context.Context, intentID int64) {
	if err := o.intents.CommitIntent(ctx, intentID); err != nil {
		o.logger.Printf("failed to commit intent %d: %v", intentID, err)
	}
}
