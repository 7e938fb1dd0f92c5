package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentUpload(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.register(t, "alice@example.com")
	wsID := e.createWorkspace(t, token, "Research")

	w := e.uploadFile(t, token, wsID, "report.pdf", "application/pdf", "%PDF-1.4 content")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	doc := decode(t, w)["document"].(map[string]interface{})
	assert.Equal(t, "report.pdf", doc["originalName"])
	assert.Equal(t, "uploaded", doc["status"])
	assert.Equal(t, wsID, doc["workspaceId"])
	// the storage path stays server-side
	_, leaked := doc["filePath"]
	assert.False(t, leaked)
	assert.Equal(t, 1, e.store.Len())
}

func TestDocumentUpload_Rejections(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.register(t, "alice@example.com")
	_, bobToken := e.register(t, "bob@example.com")
	wsID := e.createWorkspace(t, aliceToken, "Research")

	// non-member
	w := e.uploadFile(t, bobToken, wsID, "report.pdf", "application/pdf", "data")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// executable mime type
	w = e.uploadFile(t, aliceToken, wsID, "tool.exe", "application/x-msdownload", "MZ")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// missing file field
	req := e.do(t, http.MethodPost, "/workspaces/"+wsID+"/documents/upload", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, req.Code)
}

func TestDocumentUpload_SizeCap(t *testing.T) {
	e := newTestEnv(t)
	e.cfg.Upload.MaxFileSize = 16
	_, token := e.register(t, "alice@example.com")
	wsID := e.createWorkspace(t, token, "Research")

	w := e.uploadFile(t, token, wsID, "big.txt", "text/plain", strings.Repeat("x", 64))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestDocumentGet_AccessBoundary(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.register(t, "alice@example.com")
	_, bobToken := e.register(t, "bob@example.com")
	wsID := e.createWorkspace(t, aliceToken, "Research")

	w := e.uploadFile(t, aliceToken, wsID, "report.pdf", "application/pdf", "data")
	require.Equal(t, http.StatusCreated, w.Code)
	docID := decode(t, w)["document"].(map[string]interface{})["id"].(string)

	// member sees it
	w = e.do(t, http.MethodGet, "/documents/"+docID, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// non-member is refused
	w = e.do(t, http.MethodGet, "/documents/"+docID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// unknown document is not-found for any authenticated caller
	w = e.do(t, http.MethodGet, "/documents/unknown", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentList_Pagination(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.register(t, "alice@example.com")
	wsID := e.createWorkspace(t, token, "Research")

	for i := 0; i < 25; i++ {
		w := e.uploadFile(t, token, wsID, fmt.Sprintf("doc-%d.pdf", i), "application/pdf", "data")
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := e.do(t, http.MethodGet, "/workspaces/"+wsID+"/documents?limit=20&offset=0", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Len(t, page["documents"].([]interface{}), 20)
	assert.Equal(t, float64(25), page["total"])
	assert.Equal(t, true, page["hasMore"])

	w = e.do(t, http.MethodGet, "/workspaces/"+wsID+"/documents?limit=20&offset=20", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode(t, w)
	assert.Len(t, page["documents"].([]interface{}), 5)
	assert.Equal(t, false, page["hasMore"])
}

func TestDocumentList_NonMemberForbidden(t *testing.T) {
	e := newTestEnv(t)
	_, aliceToken := e.register(t, "alice@example.com")
	_, bobToken := e.register(t, "bob@example.com")
	wsID := e.createWorkspace(t, aliceToken, "Research")

	w := e.do(t, http.MethodGet, "/workspaces/"+wsID+"/documents", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDocumentStatusEndpoint(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.register(t, "alice@example.com")
	wsID := e.createWorkspace(t, token, "Research")

	w := e.uploadFile(t, token, wsID, "report.pdf", "application/pdf", "data")
	require.Equal(t, http.StatusCreated, w.Code)
	docID := decode(t, w)["document"].(map[string]interface{})["id"].(string)

	w = e.do(t, http.MethodPatch, "/documents/"+docID+"/status", token, gin.H{"status": "indexing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	doc := decode(t, w)["document"].(map[string]interface{})
	assert.Equal(t, "indexing", doc["status"])

	// skipping ahead is rejected
	w = e.do(t, http.MethodPatch, "/documents/"+docID+"/status", token, gin.H{"status": "uploading"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// unknown status
	w = e.do(t, http.MethodPatch, "/documents/"+docID+"/status", token, gin.H{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentDeleteEndpoint(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.register(t, "alice@example.com")
	wsID := e.createWorkspace(t, token, "Research")

	w := e.uploadFile(t, token, wsID, "report.pdf", "application/pdf", "data")
	require.Equal(t, http.StatusCreated, w.Code)
	docID := decode(t, w)["document"].(map[string]interface{})["id"].(string)

	w = e.do(t, http.MethodDelete, "/documents/"+docID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, e.store.Len())

	w = e.do(t, http.MethodGet, "/documents/"+docID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentStatsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.register(t, "alice@example.com")
	wsID := e.createWorkspace(t, token, "Research")

	for i := 0; i < 3; i++ {
		w := e.uploadFile(t, token, wsID, fmt.Sprintf("doc-%d.pdf", i), "application/pdf", "data")
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := e.do(t, http.MethodGet, "/workspaces/"+wsID+"/documents/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["stats"].(map[string]interface{})
	assert.Equal(t, float64(3), stats["total"])
	assert.Equal(t, float64(12), stats["totalSize"])
	byStatus := stats["byStatus"].(map[string]interface{})
	assert.Equal(t, float64(3), byStatus["uploaded"])
}
