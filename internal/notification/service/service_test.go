package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/migration"
	"github.com/cityville/laundromat/internal/notification/domain"
	"github.com/cityville/laundromat/internal/notification/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newNotificationService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.Run(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node
}

func TestNotifyValidatesRequest(t *testing.T) {
	svc, node := newNotificationService(t)
	user := node.Generate()

	_, err := svc.Notify(context.Background(), domain.CreateNotificationRequest{
		Kind:  domain.KindSystem,
		Title: "Hello",
	})
	assert.ErrorIs(t, err, domain.ErrUserRequired)

	_, err = svc.Notify(context.Background(), domain.CreateNotificationRequest{
		UserID: user,
		Kind:   "carrier_pigeon",
		Title:  "Hello",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidKind)

	_, err = svc.Notify(context.Background(), domain.CreateNotificationRequest{
		UserID: user,
		Kind:   domain.KindSystem,
		Title:  "   ",
	})
	assert.ErrorIs(t, err, domain.ErrTitleRequired)
}

func TestNotifyCarriesPayload(t *testing.T) {
	svc, node := newNotificationService(t)
	user := node.Generate()

	n, err := svc.Notify(context.Background(), domain.CreateNotificationRequest{
		UserID:    user,
		Kind:      domain.KindOrderUpdate,
		Title:     "Order placed",
		Message:   "Your order ORD-2026-001 is in.",
		Reference: "ORD-2026-001",
		Data:      datatypes.JSON(`{"stage":"washing","progress":45}`),
	})
	require.NoError(t, err)
	assert.False(t, n.Read)
	assert.JSONEq(t, `{"stage":"washing","progress":45}`, string(n.Data))

	list, _, err := svc.List(context.Background(), domain.ListNotificationFilter{UserID: user.String()})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.JSONEq(t, `{"stage":"washing","progress":45}`, string(list[0].Data))
}

func TestUnreadLifecycle(t *testing.T) {
	svc, node := newNotificationService(t)
	user := node.Generate()
	other := node.Generate()

	var first *domain.Notification
	for i := range 3 {
		n, err := svc.Notify(context.Background(), domain.CreateNotificationRequest{
			UserID: user,
			Kind:   domain.KindSystem,
			Title:  "Ping",
		})
		require.NoError(t, err)
		if i == 0 {
			first = n
		}
	}
	_, err := svc.Notify(context.Background(), domain.CreateNotificationRequest{
		UserID: other,
		Kind:   domain.KindSystem,
		Title:  "Not yours",
	})
	require.NoError(t, err)

	unread, err := svc.CountUnread(context.Background(), user)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	read, err := svc.MarkRead(context.Background(), first.ID.String())
	require.NoError(t, err)
	assert.True(t, read.Read)
	require.NotNil(t, read.ReadAt)

	unread, err = svc.CountUnread(context.Background(), user)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	marked, err := svc.MarkAllRead(context.Background(), user)
	require.NoError(t, err)
	assert.EqualValues(t, 2, marked)

	unread, err = svc.CountUnread(context.Background(), user)
	require.NoError(t, err)
	assert.Zero(t, unread)

	// The other inbox is untouched.
	unread, err = svc.CountUnread(context.Background(), other)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}

func TestListFiltersUnread(t *testing.T) {
	svc, node := newNotificationService(t)
	user := node.Generate()

	a, err := svc.Notify(context.Background(), domain.CreateNotificationRequest{
		UserID: user,
		Kind:   domain.KindPayment,
		Title:  "Invoice issued",
	})
	require.NoError(t, err)
	_, err = svc.Notify(context.Background(), domain.CreateNotificationRequest{
		UserID: user,
		Kind:   domain.KindDelivery,
		Title:  "Out for delivery",
	})
	require.NoError(t, err)

	_, err = svc.MarkRead(context.Background(), a.ID.String())
	require.NoError(t, err)

	unreadOnly := true
	list, info, err := svc.List(context.Background(), domain.ListNotificationFilter{
		UserID: user.String(),
		Unread: &unreadOnly,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.KindDelivery, list[0].Kind)
	assert.EqualValues(t, 1, info.Total)

	list, _, err = svc.List(context.Background(), domain.ListNotificationFilter{
		UserID: user.String(),
		Kind:   string(domain.KindPayment),
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Invoice issued", list[0].Title)
}

func TestDeleteNotification(t *testing.T) {
	svc, node := newNotificationService(t)
	user := node.Generate()

	n, err := svc.Notify(context.Background(), domain.CreateNotificationRequest{
		UserID: user,
		Kind:   domain.KindSystem,
		Title:  "Bye",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), n.ID.String()))
	assert.ErrorIs(t, svc.Delete(context.Background(), n.ID.String()), domain.ErrNotificationNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), "garbage"), domain.ErrNotificationNotFound)
}
