package tickets

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/01moynul/storefront-fulfillment/internal/apperr"
	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/01moynul/storefront-fulfillment/internal/store"
	"github.com/01moynul/storefront-fulfillment/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	customer = models.Actor{UserID: 7, Name: "Cy", Role: models.RoleCustomer}
	other    = models.Actor{UserID: 8, Name: "Oz", Role: models.RoleCustomer}
	support  = models.Actor{UserID: 102, Name: "Sam", Role: models.RoleSupport}
)

func newService(t *testing.T) (*Service, *memstore.Store, string) {
	dir := t.TempDir()
	s := memstore.New()
	attachments := DiskAttachments{Dir: dir, BaseURL: "http://shop.test/"}
	return NewService(s, s, attachments, zap.NewNop()), s, dir
}

func TestCreateFillsProductFromOrder(t *testing.T) {
	svc, s, _ := newService(t)
	p := s.AddProduct(models.Product{Name: "Boots", Slug: "boots", StockQuantity: 3})
	o := s.AddOrder(models.Order{CustomerID: customer.UserID, ProductID: p.ID, Quantity: 1})

	ticket, err := svc.Create(context.Background(), customer, NewTicket{OrderID: &o.ID, IssueDescription: "Wrong colour"})
	require.NoError(t, err)

	assert.Equal(t, models.TicketStatusPending, ticket.Status)
	require.NotNil(t, ticket.ProductID)
	assert.Equal(t, p.ID, *ticket.ProductID)
}

func TestCreateRejectsSomeoneElsesOrder(t *testing.T) {
	svc, s, _ := newService(t)
	p := s.AddProduct(models.Product{Name: "Boots", Slug: "boots", StockQuantity: 3})
	o := s.AddOrder(models.Order{CustomerID: customer.UserID, ProductID: p.ID, Quantity: 1})

	_, err := svc.Create(context.Background(), other, NewTicket{OrderID: &o.ID, IssueDescription: "Wrong colour"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCreateRequiresDescription(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Create(context.Background(), customer, NewTicket{IssueDescription: " \n"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCreateStoresAttachment(t *testing.T) {
	svc, _, dir := newService(t)

	ticket, err := svc.Create(context.Background(), customer, NewTicket{
		IssueDescription: "Damaged box",
		Attachment:       &Upload{Filename: "../../etc/photo.JPG", Content: strings.NewReader("jpeg-bytes")},
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(ticket.Attachment, "http://shop.test/uploads/"))
	name := path.Base(ticket.Attachment)
	assert.Equal(t, ".jpg", filepath.Ext(name))

	content, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(content))
}

func TestStaffQueueRequiresStaff(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, customer, "")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = svc.Get(ctx, customer, 1)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = svc.Update(ctx, customer, 1, models.TicketStatusResolved, "done")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.List(ctx, support, "bogus")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestUpdateLifecycle(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, customer, NewTicket{IssueDescription: "Late parcel"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, support, ticket.ID, models.TicketStatusRejected, "  ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Update(ctx, support, ticket.ID, "archived", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	updated, err := svc.Update(ctx, support, ticket.ID, models.TicketStatusInProgress, "Contacted courier")
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusInProgress, updated.Status)

	updated, err = svc.Update(ctx, support, ticket.ID, models.TicketStatusClosed, "")
	require.NoError(t, err)
	assert.Equal(t, "Contacted courier", updated.ResolutionNote)

	_, err = svc.Update(ctx, support, ticket.ID, models.TicketStatusOpen, "reopen")
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	queue, err := svc.List(ctx, support, models.TicketStatusClosed)
	require.NoError(t, err)
	assert.Len(t, queue, 1)

	own, err := svc.ListOwn(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, own)
}

func TestUpdateUnknownTicket(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Update(context.Background(), support, 99, models.TicketStatusResolved, "ok")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

// closedConcurrently closes the ticket just before the wrapped update runs,
// as another staff member would.
type closedConcurrently struct {
	*memstore.Store
}

func (c closedConcurrently) UpdateTicket(ctx context.Context, id int64, status models.TicketStatus, note string) (*models.SupportTicket, error) {
	if _, err := c.Store.UpdateTicket(ctx, id, models.TicketStatusClosed, "closed by colleague"); err != nil {
		return nil, err
	}
	return c.Store.UpdateTicket(ctx, id, status, note)
}

func TestUpdateDoesNotReopenConcurrentlyClosedTicket(t *testing.T) {
	s := memstore.New()
	svc := NewService(closedConcurrently{Store: s}, s, nil, zap.NewNop())
	ctx := context.Background()

	ticket, err := svc.Create(ctx, customer, NewTicket{IssueDescription: "Late parcel"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, support, ticket.ID, models.TicketStatusInProgress, "")
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))

	stored, err := s.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusClosed, stored.Status)
	assert.Equal(t, "closed by colleague", stored.ResolutionNote)
}

// failingTickets rejects every insert.
type failingTickets struct {
	store.TicketStore
}

func (failingTickets) CreateTicket(ctx context.Context, ticket *models.SupportTicket) error {
	return errors.New("connection reset")
}

func TestCreateRemovesAttachmentWhenInsertFails(t *testing.T) {
	dir := t.TempDir()
	s := memstore.New()
	attachments := DiskAttachments{Dir: dir, BaseURL: "http://shop.test"}
	svc := NewService(failingTickets{TicketStore: s}, s, attachments, zap.NewNop())

	_, err := svc.Create(context.Background(), customer, NewTicket{
		IssueDescription: "Damaged box",
		Attachment:       &Upload{Filename: "photo.png", Content: strings.NewReader("png-bytes")},
	})
	assert.True(t, apperr.Is(err, apperr.KindInternal))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiskAttachmentsRemove(t *testing.T) {
	dir := t.TempDir()
	attachments := DiskAttachments{Dir: dir, BaseURL: "http://shop.test"}
	ctx := context.Background()

	url, err := attachments.Save(ctx, "note.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	require.NoError(t, attachments.Remove(ctx, url))

	_, err = os.Stat(filepath.Join(dir, path.Base(url)))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, attachments.Remove(ctx, url))
}
