package knowledge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
	"github.com/zhouzirui/edu-guide/backend/internal/model/knowledge"
)

func setupRouter() *chi.Mux {
	r := chi.NewRouter()
	New(knowledge.MustDefault()).RegisterRoutes(r)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListFields(t *testing.T) {
	rec := get(setupRouter(), "/fields")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp fieldsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Fields, len(chat.Fields()))
	assert.Equal(t, chat.FieldEngineering, resp.Fields[0].Name)
	assert.ElementsMatch(t,
		[]chat.Topic{chat.TopicCareers, chat.TopicOverview, chat.TopicSalary, chat.TopicSkills},
		resp.Fields[0].Topics)
	assert.NotNil(t, resp.Fields[2].Topics, "fields without curated content list no topics")
	assert.Contains(t, resp.GeneralTopics, chat.TopicWellbeing)
}

func TestGetEntry(t *testing.T) {
	r := setupRouter()

	tests := []struct {
		name      string
		path      string
		wantCode  int
		wantTitle string
	}{
		{name: "exact", path: "/knowledge/engineering/salary", wantCode: http.StatusOK, wantTitle: "Engineering Salary Ranges"},
		{name: "general fallback", path: "/knowledge/Law/overview", wantCode: http.StatusOK, wantTitle: "Career Guidance Overview"},
		{name: "unknown field", path: "/knowledge/astrology/overview", wantCode: http.StatusNotFound},
		{name: "unknown topic", path: "/knowledge/Arts/salary", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(r, tt.path)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantTitle == "" {
				return
			}
			var entry knowledge.Entry
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
			assert.Equal(t, tt.wantTitle, entry.Title)
		})
	}
}
