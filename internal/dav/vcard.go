package dav

import (
	"bytes"
	"fmt"

	"github.com/ankitsingh4634/taskify/internal/model"
	"github.com/emersion/go-vcard"
)

// EncodeContact serializes a contact as a vCard document. Flattened
// multi-value email and phone fields each produce their own repeated
// EMAIL/TEL line.
func EncodeContact(c *model.Contact) (string, error) {
	card := make(vcard.Card)
	card.SetValue(vcard.FieldVersion, "3.0")
	card.SetValue(vcard.FieldFormattedName, c.FullName)
	card.SetValue(vcard.FieldUID, c.CardDAVUID)

	for _, email := range model.SplitMulti(c.Email) {
		card.Add(vcard.FieldEmail, &vcard.Field{Value: email})
	}
	for _, phone := range model.SplitMulti(c.Phone) {
		card.Add(vcard.FieldTelephone, &vcard.Field{Value: phone})
	}
	if c.Address != "" {
		card.SetValue(vcard.FieldAddress, c.Address)
	}
	if c.Organization != "" {
		card.SetValue(vcard.FieldOrganization, c.Organization)
	}
	if c.Title != "" {
		card.SetValue(vcard.FieldTitle, c.Title)
	}

	var buf bytes.Buffer
	if err := vcard.NewEncoder(&buf).Encode(card); err != nil {
		return "", fmt.Errorf("failed to encode vcard: %w", err)
	}
	return buf.String(), nil
}
