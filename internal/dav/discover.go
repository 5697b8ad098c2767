package dav

import (
	"context"
	"fmt"

	"github.com/emersion/go-webdav/caldav"
	"github.com/emersion/go-webdav/carddav"
)

// VerifyCollections walks the server's discovery chain (current user
// principal, home sets, collections) and logs what it finds. It is run
// once at startup so a misconfigured base URL or credential pair fails
// loudly instead of on the first user mutation.
func (c *Client) VerifyCollections(ctx context.Context) error {
	calClient, err := caldav.NewClient(c.httpClient, c.baseURL)
	if err != nil {
		return fmt.Errorf("failed to create caldav client: %w", err)
	}

	principal, err := calClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return fmt.Errorf("failed to find principal: %w", err)
	}

	calHome, err := calClient.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return fmt.Errorf("failed to find calendar home set: %w", err)
	}
	calendars, err := calClient.FindCalendars(ctx, calHome)
	if err != nil {
		return fmt.Errorf("failed to list calendars: %w", err)
	}
	for _, cal := range calendars {
		c.logger.Printf("Found calendar %q at %s", cal.Name, cal.Path)
	}

	cardClient, err := carddav.NewClient(c.httpClient, c.baseURL)
	if err != nil {
		return fmt.Errorf("failed to create carddav client: %w", err)
	}
	cardHome, err := cardClient.FindAddressBookHomeSet(ctx, principal)
	if err != nil {
		return fmt.Errorf("failed to find addressbook home set: %w", err)
	}
	books, err := cardClient.FindAddressBooks(ctx, cardHome)
	if err != nil {
		return fmt.Errorf("failed to list addressbooks: %w", err)
	}
	for _, book := range books {
		c.logger.Printf("Found addressbook %q at %s", book.Name, book.Path)
	}

	return nil
}
