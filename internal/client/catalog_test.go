package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/onieto/order-service/internal/domain/product"
)

func newTestCatalog(t *testing.T, handler http.HandlerFunc) *Catalog {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCatalog(srv.URL, time.Second, noop.NewTracerProvider())
}

func TestCatalogGetByID(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/p1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "p1",
			"name": "Widget",
			"description": "A widget",
			"price": 12.5,
			"image": "iVBORw0KGgo="
		}`))
	})

	p, err := c.GetByID(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Widget", p.Name)
	require.NotNil(t, p.Price)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("12.5")))
	assert.NotEmpty(t, p.Image)
}

func TestCatalogGetByID_NullPrice(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": "p1", "name": "Draft", "price": null}`))
	})

	p, err := c.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Nil(t, p.Price)
}

func TestCatalogGetByID_NotFound(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestCatalogGetByID_ServerError(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.GetByID(context.Background(), "p1")
	require.ErrorIs(t, err, product.ErrUnavailable)
}

func TestCatalogGetByID_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewCatalog(srv.URL, time.Second, noop.NewTracerProvider())

	_, err := c.GetByID(context.Background(), "p1")
	require.ErrorIs(t, err, product.ErrUnavailable)
}

func TestCatalogGetByID_BadJSON(t *testing.T) {
	c := newTestCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	})

	_, err := c.GetByID(context.Background(), "p1")
	require.ErrorIs(t, err, product.ErrUnavailable)
}

func TestCatalogGetByID_EscapesID(t *testing.T) {
	var gotPath string
	c := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"id": "a/b"}`))
	})

	_, err := c.GetByID(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/a%2Fb", gotPath)
}
