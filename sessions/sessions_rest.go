package sessions

import (
	"net/http"
	"time"

	"marketflow/account"
	"marketflow/bizerror"
	"marketflow/misc"
	"marketflow/persistence"
	"marketflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
)

var PathSessions = "/v1/sessions"

func RegisterSessionsRestAPI(r *gin.Engine) {
	g := r.Group(PathSessions)
	g.POST("", SimpleLoginHandler)
	g.DELETE("", SimpleLogoutHandler)
	g.GET("", session.SimpleAuthFilter(), DetailSessionHandler)
}

func SimpleLogoutHandler(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, false)
	c.AbortWithStatus(http.StatusNoContent)
}

func SimpleLoginHandler(c *gin.Context) {
	login := session.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: err.Error()})
		return
	}
	identity := session.Identity{}
	db := persistence.ActiveDataSourceManager.GormDB(c.Request.Context())
	if err := db.Model(&account.User{}).
		Where(&account.User{Name: login.Name, Secret: account.HashSha256(login.Password)}).
		Scan(&identity).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			panic(bizerror.ErrUnauthenticated)
		}
		panic(err)
	}
	token := uuid.New().String()
	perms, areaRoles := account.LoadPermsFunc(identity.ID)
	s := session.Session{Token: token, Identity: identity, Perms: perms, AreaRoles: areaRoles, SigningTime: time.Now()}
	session.TokenCache.Set(token, &s, cache.DefaultExpiration)

	c.SetCookie(session.KeySecToken, token, int(session.TokenExpiration/time.Second), "/", "", false, false)
	c.JSON(http.StatusOK, &s)
}

func DetailSessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, session.ExtractSessionFromGinContext(c))
}
