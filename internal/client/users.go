package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/trace"

	"github.com/onieto/order-service/internal/domain/user"
)

// Users resolves buyer accounts from the users service.
type Users struct {
	baseURL string
	httpc   *http.Client
	tracer  trace.Tracer
}

// NewUsers creates a users client. baseURL points at the users resource,
// e.g. "http://users:8080/api/users".
func NewUsers(baseURL string, timeout time.Duration, tp trace.TracerProvider) *Users {
	return &Users{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		tracer:  tp.Tracer("order-service/client"),
	}
}

type userResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status int    `json:"status"`
}

// GetByEmail implements user.Client. A 404 maps to user.ErrNotFound;
// transport failures and any other non-200 answer map to user.ErrUnavailable.
func (c *Users) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	ctx, span := c.tracer.Start(ctx, "Users.GetByEmail")
	defer span.End()

	u := c.baseURL + "/email/" + url.PathEscape(email)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build users request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(user.ErrUnavailable, "get user %s: %v", email, err)
	}
	defer drainClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, user.ErrNotFound
	default:
		return nil, errors.Wrapf(user.ErrUnavailable,
			"get user %s: users service answered %d", email, resp.StatusCode)
	}

	var ur userResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return nil, errors.Wrapf(user.ErrUnavailable, "decode user %s: %v", email, err)
	}

	return &user.User{
		ID:     ur.ID,
		Name:   ur.Name,
		Email:  ur.Email,
		Status: ur.Status,
	}, nil
}
