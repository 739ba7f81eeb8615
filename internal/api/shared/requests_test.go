package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	UserName string   `json:"userName" validate:"required,max=5"`
	Email    string   `json:"email"    validate:"required,email"`
	Status   string   `json:"status"   validate:"omitempty,oneof=TODO DONE"`
	Assignee string   `json:"assignee" validate:"required,uuid"`
	Due      string   `json:"due"      validate:"required,datetime=2006-01-02"`
	Roles    []string `json:"roles"    validate:"min=1"`
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	var got sampleRequest
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"userName":"bob"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &got))
	assert.Equal(t, "bob", got.UserName)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"userName":`))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), req, &got))

	big := `{"userName":"` + strings.Repeat("x", MaxRequestBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), req, &got))
}

func TestValidationFields(t *testing.T) {
	t.Parallel()

	err := ValidateRequest(sampleRequest{
		UserName: "too-long",
		Email:    "nope",
		Status:   "LATER",
		Assignee: "123",
		Due:      "tomorrow",
	})
	require.Error(t, err)

	fields := ValidationFields(err)
	assert.Equal(t, map[string]string{
		"userName": "must be at most 5 characters",
		"email":    "should be a valid email",
		"status":   "must be one of TODO, DONE",
		"assignee": "must be a valid UUID",
		"due":      "must be a date in YYYY-MM-DD format",
		"roles":    "must contain at least 1 item(s)",
	}, fields)

	assert.NoError(t, ValidateRequest(sampleRequest{
		UserName: "bob",
		Email:    "bob@example.com",
		Assignee: "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
		Due:      "2030-01-02",
		Roles:    []string{"USER"},
	}))

	assert.Nil(t, ValidationFields(errors.New("plain")))
}
