package gdrive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

func TestClassifyUpdate(t *testing.T) {
	tests := []struct {
		name     string
		created  string
		modified string
		want     domain.UpdateType
	}{
		{
			name:     "modified right after creation is a creation",
			created:  "2026-08-29T10:00:00Z",
			modified: "2026-08-29T10:00:30Z",
			want:     domain.UpdateCreated,
		},
		{
			name:     "modified later is a modification",
			created:  "2026-08-29T10:00:00Z",
			modified: "2026-08-29T10:05:00Z",
			want:     domain.UpdateModified,
		},
		{
			name:     "unparseable timestamps default to modification",
			created:  "not-a-time",
			modified: "2026-08-29T10:00:00Z",
			want:     domain.UpdateModified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &drive.File{CreatedTime: tt.created, ModifiedTime: tt.modified}
			assert.Equal(t, tt.want, classifyUpdate(f))
		})
	}
}

func TestAccessLevel(t *testing.T) {
	assert.Equal(t, domain.AccessOwner, accessLevel(&drive.File{OwnedByMe: true}))
	assert.Equal(t, domain.AccessEditor, accessLevel(&drive.File{
		Capabilities: &drive.FileCapabilities{CanEdit: true},
	}))
	assert.Equal(t, domain.AccessViewer, accessLevel(&drive.File{}))
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `it\'s a \\ test`, escapeQuery(`it's a \ test`))
	assert.Equal(t, "plain", escapeQuery("plain"))
}

func TestMapError(t *testing.T) {
	notFound := &googleapi.Error{Code: 404}
	assert.ErrorIs(t, mapError("document", notFound), domain.ErrNotFound)

	forbidden := &googleapi.Error{Code: 403}
	assert.ErrorIs(t, mapError("document", forbidden), domain.ErrAccessDenied)

	rateLimited := mapError("search", &googleapi.Error{Code: 429})
	assert.True(t, domain.IsTransient(rateLimited))

	serverErr := mapError("search", &googleapi.Error{Code: 503})
	assert.True(t, domain.IsTransient(serverErr))

	network := mapError("search", errors.New("connection reset"))
	assert.True(t, domain.IsTransient(network))

	badRequest := mapError("search", &googleapi.Error{Code: 400})
	assert.False(t, domain.IsTransient(badRequest))
	var aerr *domain.AdapterError
	assert.ErrorAs(t, badRequest, &aerr)
}

func TestFileAuthor(t *testing.T) {
	withEditor := &drive.File{
		LastModifyingUser: &drive.User{DisplayName: "Ada"},
		Owners:            []*drive.User{{DisplayName: "Grace"}},
	}
	assert.Equal(t, "Ada", fileAuthor(withEditor))

	ownerOnly := &drive.File{Owners: []*drive.User{{DisplayName: "Grace"}}}
	assert.Equal(t, "Grace", fileAuthor(ownerOnly))

	assert.Empty(t, fileAuthor(&drive.File{}))
}

func TestSearchSnippet(t *testing.T) {
	withDescription := &drive.File{Name: "Budget", Description: "Q3 numbers"}
	assert.Equal(t, "Q3 numbers", searchSnippet(withDescription))

	noDescription := &drive.File{Name: "Budget", MimeType: "application/vnd.google-apps.spreadsheet"}
	assert.Equal(t, "Document: Budget - application/vnd.google-apps.spreadsheet", searchSnippet(noDescription))

	bare := &drive.File{}
	assert.Equal(t, "Document: Untitled - Unknown type", searchSnippet(bare))
}

func TestUpdateSnippet(t *testing.T) {
	withDescription := &drive.File{Name: "Budget", Description: "Q3 numbers"}
	assert.Equal(t, "Q3 numbers", updateSnippet(withDescription, domain.UpdateModified))

	noDescription := &drive.File{Name: "Budget"}
	assert.Equal(t, "Created document: Budget", updateSnippet(noDescription, domain.UpdateCreated))
	assert.Equal(t, "Modified document: Budget", updateSnippet(noDescription, domain.UpdateModified))
}
