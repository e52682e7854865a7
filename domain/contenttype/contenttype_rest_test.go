package contenttype_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketflow/authority"
	"marketflow/bizerror"
	"marketflow/domain/contenttype"
	"marketflow/session"
	"marketflow/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestContentTypesRestAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	contenttype.RegisterContentTypesRestAPI(router,
		testinfra.SessionFilter(testinfra.BuildSecCtx(100, authority.RoleAdmin)))

	t.Run("should be able to validate create parameters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, contenttype.PathContentTypes, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code": "common.bad_param", "message": "EOF", "data": null}`))

		req = httptest.NewRequest(http.MethodPost, contenttype.PathContentTypes, strings.NewReader(`{}`))
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
			"message": "Key: 'ContentTypeCreation.Name' Error:Field validation for 'Name' failed on the 'required' tag",
			"data":null}`))
	})

	t.Run("should be able to create content type", func(t *testing.T) {
		contenttype.CreateContentTypeFunc = func(c *contenttype.ContentTypeCreation, s *session.Session) (*contenttype.ContentType, error) {
			return &contenttype.ContentType{ID: 3, Name: c.Name, Description: c.Description, IsActive: true}, nil
		}
		req := httptest.NewRequest(http.MethodPost, contenttype.PathContentTypes,
			strings.NewReader(`{"name":"video institucional","description":"peças longas"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(MatchJSON(`{"id":"3","name":"video institucional","description":"peças longas",
			"isActive":true,"createTime":"0001-01-01T00:00:00Z"}`))
	})

	t.Run("should be able to query steps of a content type", func(t *testing.T) {
		contenttype.QueryStepsFunc = func(contentTypeId types.ID, s *session.Session) ([]contenttype.WorkflowStep, error) {
			areaId := types.ID(300)
			return []contenttype.WorkflowStep{{ID: 20, ContentTypeID: contentTypeId, Name: "Briefing",
				StepOrder: 0, RequiredFieldsToEnter: contenttype.FieldNames{},
				RequiredFieldsToExit: contenttype.FieldNames{"briefing"},
				ApproverAreaID:       &areaId,
				ApproverPositions:    contenttype.Positions{authority.PositionHead},
				IsActive:             true}}, nil
		}
		req := httptest.NewRequest(http.MethodGet, contenttype.PathContentTypes+"/3/steps", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`[{"id":"20","contentTypeId":"3","name":"Briefing","description":"",
			"order":0,"requiredFieldsToEnter":[],"requiredFieldsToExit":["briefing"],
			"approverAreaId":"300","approverPositions":["HEAD"],"isFinalStep":false,"isActive":true,
			"createTime":"0001-01-01T00:00:00Z"}]`))
	})

	t.Run("should be able to delete step", func(t *testing.T) {
		contenttype.DeleteStepFunc = func(id types.ID, s *session.Session) error {
			return nil
		}
		req := httptest.NewRequest(http.MethodDelete, contenttype.PathWorkflowSteps+"/20", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))
		Expect(body).To(BeEmpty())

		contenttype.DeleteStepFunc = func(id types.ID, s *session.Session) error {
			return bizerror.ErrStepReferenced
		}
		req = httptest.NewRequest(http.MethodDelete, contenttype.PathWorkflowSteps+"/20", nil)
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code":"workflow.step_referenced",
			"message":"requests are currently on this step", "data":null}`))
	})

	t.Run("should be able to delete field", func(t *testing.T) {
		contenttype.DeleteFieldFunc = func(id types.ID, s *session.Session) (*contenttype.FieldDeletion, error) {
			return &contenttype.FieldDeletion{Deactivated: true}, nil
		}
		req := httptest.NewRequest(http.MethodDelete, contenttype.PathContentTypeFields+"/101", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"deleted":false,"deactivated":true}`))
	})

	t.Run("should be able to reorder fields", func(t *testing.T) {
		var receivedReordering *contenttype.FieldsReordering
		contenttype.ReorderFieldsFunc = func(r *contenttype.FieldsReordering, s *session.Session) ([]contenttype.ContentTypeField, error) {
			receivedReordering = r
			return []contenttype.ContentTypeField{}, nil
		}
		req := httptest.NewRequest(http.MethodPost, contenttype.PathContentTypeFields+"/reorders",
			strings.NewReader(`{"contentTypeId":"3","fieldIds":["102","101"]}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`[]`))
		Expect(receivedReordering.FieldIDs).To(Equal([]types.ID{102, 101}))

		req = httptest.NewRequest(http.MethodPost, contenttype.PathContentTypeFields+"/reorders",
			strings.NewReader(`{"contentTypeId":"3"}`))
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
			"message": "Key: 'FieldsReordering.FieldIDs' Error:Field validation for 'FieldIDs' failed on the 'required' tag",
			"data":null}`))
	})
}
