package adflow

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
	PathAdProjects = "/v1/ad-projects"
	PathAdVideos   = "/v1/ad-videos"

	PathAdDeliverables = "/v1/ad-deliverables"
	PathAdTypes        = "/v1/ad-types"
	PathAdOrigins      = "/v1/ad-origins"

	validate = validator.New()
)

func RegisterAdFlowRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	p := r.Group(PathAdProjects, middleWares...)
	p.GET("", handleQueryProjects)
	p.POST("", handleCreateProject)
	p.GET(":id", handleDetailProject)
	p.PUT(":id", handleUpdateProject)
	p.DELETE(":id", handleDeleteProject)
	p.POST(":id/submissions", handleSubmitProject)
	p.POST(":id/cancellations", handleCancelProject)
	p.POST(":id/phase-advances", handleAdvancePhase)
	p.GET(":id/phase-status", handleProjectPhaseStatus)

	v := r.Group(PathAdVideos, middleWares...)
	v.POST("", handleCreateVideo)
	v.PUT(":id", handleUpdateVideo)
	v.DELETE(":id", handleDeleteVideo)
	v.PUT(":id/phase-status", handleUpdateVideoPhaseStatus)
	v.POST(":id/validations", handleMarkValidation)
	v.POST(":id/regressions", handleRegressVideo)
	v.POST(":id/final-approvals", handleApproveVideoFinal)
	v.PUT(":id/link-anuncio", handleSetLinkAnuncio)
	v.GET(":id/comments", handleQueryVideoComments)
	v.POST(":id/comments", handleCreateVideoComment)
	v.GET(":id/deliverables", handleQueryDeliverables)
	v.POST(":id/deliverables", handleCreateDeliverable)
	v.POST(":id/nomenclatura-regenerations", handleRegenerateNomenclatura)

	d := r.Group(PathAdDeliverables, middleWares...)
	d.PUT(":id", handleUpdateDeliverable)
	d.DELETE(":id", handleDeleteDeliverable)
	d.PUT(":id/nomenclatura", handleUpdateNomenclatura)
	d.GET(":id/file", handleDownloadDeliverableFile)
	d.POST(":id/file", handleUploadDeliverableFile)

	r.Group(PathAdTypes, middleWares...).GET("", handleQueryAdTypes)
	r.Group(PathAdOrigins, middleWares...).GET("", handleQueryAdOrigins)
}

func parseIdParam(c *gin.Context, name string) types.ID {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return types.ID(id)
}

func handleQueryAdTypes(c *gin.Context) {
	records, err := QueryAdTypesFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleQueryAdOrigins(c *gin.Context) {
	records, err := QueryAdOriginsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleQueryProjects(c *gin.Context) {
	query := ProjectQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QueryProjectsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleCreateProject(c *gin.Context) {
	creation := ProjectCreation{}
	if err := c.ShouldBindJSON(&creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateProjectFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleDetailProject(c *gin.Context) {
	detail, err := DetailProjectFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func handleUpdateProject(c *gin.Context) {
	updating := ProjectUpdating{}
	if err := c.ShouldBindJSON(&updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := UpdateProjectFunc(parseIdParam(c, "id"), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeleteProject(c *gin.Context) {
	if err := DeleteProjectFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleSubmitProject(c *gin.Context) {
	record, err := SubmitProjectFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleCancelProject(c *gin.Context) {
	record, err := CancelProjectFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleAdvancePhase(c *gin.Context) {
	record, err := AdvancePhaseFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleProjectPhaseStatus(c *gin.Context) {
	report, err := ProjectPhaseStatusFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, report)
}

func handleCreateVideo(c *gin.Context) {
	creation := VideoCreation{}
	if err := c.ShouldBindJSON(&creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateVideoFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleUpdateVideo(c *gin.Context) {
	updating := VideoUpdating{}
	if err := c.ShouldBindJSON(&updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := UpdateVideoFunc(parseIdParam(c, "id"), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeleteVideo(c *gin.Context) {
	if err := DeleteVideoFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleUpdateVideoPhaseStatus(c *gin.Context) {
	updating := PhaseStatusUpdating{}
	if err := c.ShouldBindJSON(&updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := UpdateVideoPhaseStatusFunc(parseIdParam(c, "id"), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleMarkValidation(c *gin.Context) {
	marking := ValidationMarking{}
	if err := c.ShouldBindJSON(&marking); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(marking); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := MarkValidationFunc(parseIdParam(c, "id"), &marking, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleRegressVideo(c *gin.Context) {
	regression := VideoRegression{}
	if err := c.ShouldBindJSON(&regression); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(regression); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := RegressVideoFunc(parseIdParam(c, "id"), &regression, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleApproveVideoFinal(c *gin.Context) {
	approval, err := ApproveVideoFinalFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, approval)
}

func handleSetLinkAnuncio(c *gin.Context) {
	setting := LinkAnuncioSetting{}
	if err := c.ShouldBindJSON(&setting); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(setting); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := SetLinkAnuncioFunc(parseIdParam(c, "id"), &setting, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleQueryVideoComments(c *gin.Context) {
	records, err := QueryVideoCommentsFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleCreateVideoComment(c *gin.Context) {
	creation := CommentCreation{}
	if err := c.ShouldBindJSON(&creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	creation.VideoID = parseIdParam(c, "id")
	if err := validate.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateVideoCommentFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryDeliverables(c *gin.Context) {
	records, err := QueryDeliverablesFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleCreateDeliverable(c *gin.Context) {
	creation := DeliverableCreation{}
	if err := c.ShouldBindJSON(&creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	creation.VideoID = parseIdParam(c, "id")
	if err := validate.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateDeliverableFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleRegenerateNomenclatura(c *gin.Context) {
	records, err := RegenerateNomenclaturaFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleUpdateDeliverable(c *gin.Context) {
	updating := DeliverableUpdating{}
	if err := c.ShouldBindJSON(&updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := UpdateDeliverableFunc(parseIdParam(c, "id"), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeleteDeliverable(c *gin.Context) {
	if err := DeleteDeliverableFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDownloadDeliverableFile(c *gin.Context) {
	bytes, err := DownloadDeliverableFileFunc(parseIdParam(c, "id"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.Data(http.StatusOK, "application/octet-stream", bytes)
}

func handleUploadDeliverableFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	src, err := file.Open()
	if err != nil {
		panic(err)
	}
	defer src.Close()

	record, err := UploadDeliverableFileFunc(parseIdParam(c, "id"), file.Filename, src,
		session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleUpdateNomenclatura(c *gin.Context) {
	updating := NomenclaturaUpdating{}
	if err := c.ShouldBindJSON(&updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := validate.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := UpdateNomenclaturaFunc(parseIdParam(c, "id"), &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}
