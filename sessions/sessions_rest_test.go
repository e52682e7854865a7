package sessions_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"marketflow/account"
	"marketflow/authority"
	"marketflow/bizerror"
	"marketflow/domain/orgarea"
	"marketflow/persistence"
	"marketflow/session"
	"marketflow/sessions"
	"marketflow/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestSessionsRestAPI(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	sessions.RegisterSessionsRestAPI(router)

	defer func() {
		if testDatabase != nil {
			testinfra.StopMysqlTestDatabase(testDatabase)
		}
	}()
	testDatabase = testinfra.StartMysqlTestDatabase("marketflow")
	Expect(testDatabase.DS.GormDB(context.Background()).AutoMigrate(
		&account.User{}, &orgarea.Area{}, &orgarea.AreaMember{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = testDatabase.DS

	Expect(testDatabase.DS.GormDB(context.Background()).Create(&account.User{
		ID: 1, Name: "ana", Secret: account.HashSha256("s3cr3t"), Nickname: "Ana",
		Role: authority.RoleAdmin, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())

	t.Run("should reject login with wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, sessions.PathSessions,
			strings.NewReader(`{"name":"ana","password":"wrong"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(`{"code":"common.unauthenticated","message":"unauthenticated","data":null}`))
	})

	t.Run("login should issue a token cookie and a session carrying perms", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, sessions.PathSessions,
			strings.NewReader(`{"name":"ana","password":"s3cr3t"}`))
		status, body, resp := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))

		cookies := resp.Result().Cookies()
		var token string
		for _, ck := range cookies {
			if ck.Name == session.KeySecToken {
				token = ck.Value
			}
		}
		Expect(token).ToNot(BeEmpty())
		Expect(body).To(MatchJSON(fmt.Sprintf(`{"token":"%s",
			"identity":{"id":"1","name":"ana","nickname":"Ana"},
			"perms":["ADMIN"],"areaRoles":[]}`, token)))

		cached, found := session.TokenCache.Get(token)
		Expect(found).To(BeTrue())
		Expect(cached.(*session.Session).Identity.Name).To(Equal("ana"))

		detailReq := httptest.NewRequest(http.MethodGet, sessions.PathSessions, nil)
		detailReq.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: token})
		status, body, _ = testinfra.ExecuteRequest(detailReq, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(fmt.Sprintf(`{"token":"%s",
			"identity":{"id":"1","name":"ana","nickname":"Ana"},
			"perms":["ADMIN"],"areaRoles":[]}`, token)))

		logoutReq := httptest.NewRequest(http.MethodDelete, sessions.PathSessions, nil)
		logoutReq.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: token})
		status, _, _ = testinfra.ExecuteRequest(logoutReq, router)
		Expect(status).To(Equal(http.StatusNoContent))
		_, found = session.TokenCache.Get(token)
		Expect(found).To(BeFalse())

		detailReq = httptest.NewRequest(http.MethodGet, sessions.PathSessions, nil)
		detailReq.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: token})
		status, _, _ = testinfra.ExecuteRequest(detailReq, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
	})
}
