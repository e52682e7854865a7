package ads

import (
	"net/http"
	"strconv"

	"marketflow/bizerror"
	"marketflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	PathAdInsights  = "/v1/ad-insights"
	PathAdCreatives = "/v1/ad-creatives"

	validate = validator.New()
)

func RegisterAdsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAdInsights, middleWares...)
	g.GET("", handleQueryAdMetrics)
	g.POST("", handleIngestInsight)
	g.GET("filter-options", handleFilterOptions)

	r.Group(PathAdCreatives, middleWares...).GET(":id", handleGetCreative)
}

func parseIdParam(c *gin.Context, name string) types.ID {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return types.ID(id)
}

func handleGetCreative(c *gin.Context) {
	doc, err := GetCreativeFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, doc)
}

func handleQueryAdMetrics(c *gin.Context) {
	query := MetricsQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	metrics, err := QueryAdMetricsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, metrics)
}

func handleIngestInsight(c *gin.Context) {
	insight := AdInsight{}
	if err := c.ShouldBindJSON(&insight); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(insight); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := IngestInsightFunc(&insight, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, insight)
}

func handleFilterOptions(c *gin.Context) {
	options, err := FilterOptionsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, options)
}
