package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/types"
)

func TestWriteSuccessEnvelopes(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessStatus(rec, http.StatusCreated, map[string]string{"order_id": "o-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"order_id":"o-1"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteNoContent(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		status      int
		code        pkgerrors.Code
		message     string
		details     bool
		retryAfter  bool
		logContains []string
		logOmits    []string
	}{
		{
			name:        "validation keeps message and details",
			err:         pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").WithDetails(map[string]any{"available": 1}),
			status:      http.StatusBadRequest,
			code:        pkgerrors.CodeValidation,
			message:     "insufficient stock",
			details:     true,
			logContains: []string{`"level":"warn"`, `"request.rejected"`},
			logOmits:    []string{"error_chain", "pg_code"},
		},
		{
			name:        "forbidden is a warning",
			err:         pkgerrors.New(pkgerrors.CodeForbidden, "seller not approved"),
			status:      http.StatusForbidden,
			code:        pkgerrors.CodeForbidden,
			message:     "seller not approved",
			logContains: []string{`"level":"warn"`},
		},
		{
			name:        "dependency hides cause and asks for retry",
			err:         pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("dial tcp: refused"), "insert order"),
			status:      http.StatusServiceUnavailable,
			code:        pkgerrors.CodeDependency,
			message:     "dependency unavailable",
			retryAfter:  true,
			logContains: []string{`"request.error"`, "dial tcp", "error_chain"},
		},
		{
			name:    "untyped errors are internal",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			code:    pkgerrors.CodeInternal,
			message: "internal server error",
		},
		{
			name:        "postgres fields reach the log only",
			err:         pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23514", ConstraintName: "products_stock_check"}), "reserve stock"),
			status:      http.StatusServiceUnavailable,
			code:        pkgerrors.CodeDependency,
			message:     "dependency unavailable",
			retryAfter:  true,
			logContains: []string{`"pg_code":"23514"`, `"pg_constraint":"products_stock_check"`},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
			rec := httptest.NewRecorder()
			WriteError(context.Background(), logg, rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			var env types.ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.Equal(t, string(tc.code), env.Error.Code)
			assert.Equal(t, tc.message, env.Error.Message)
			assert.Equal(t, tc.details, env.Error.Details != nil)
			assert.Equal(t, tc.retryAfter, rec.Header().Get("Retry-After") != "")
			assert.NotContains(t, rec.Body.String(), "23514")

			for _, s := range tc.logContains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tc.logOmits {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestWriteErrorWithoutLogger(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
