package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/konatebeh20/EduTrack/core/report"
	"github.com/konatebeh20/EduTrack/core/student"
)

type studentApi struct {
	service   *student.Service
	reportSvc *report.Service
}

func registerStudentAPI(g *echo.Group, svc *student.Service, reportSvc *report.Service) {
	api := studentApi{service: svc, reportSvc: reportSvc}

	sg := g.Group("/students")
	sg.GET("", api.studentQuery)

	dg := sg.Group("/:id")
	dg.GET("", api.studentRetrieve)
	dg.GET("/grades", api.studentGrades)
	dg.GET("/bulletin", api.studentBulletinDownload)
	dg.POST("/bulletin", api.studentBulletinSend)
}

// Handlers

func (api *studentApi) studentQuery(ctx echo.Context) error {
	filter := student.CohortFilter{
		Search:  ctx.QueryParam("search"),
		Program: ctx.QueryParam("program"),
	}
	students, err := api.service.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) studentRetrieve(ctx echo.Context) error {
	std, err := api.contextStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) studentGrades(ctx echo.Context) error {
	std, err := api.contextStudent(ctx)
	if err != nil {
		return err
	}
	grades, err := api.service.Grades(ctx.Request().Context(), std.ID, ctx.QueryParam("term"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grades)
}

// studentBulletinDownload generates a single artifact and streams it
// back without dispatching anything.
func (api *studentApi) studentBulletinDownload(ctx echo.Context) error {
	std, err := api.contextStudent(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()

	kind := report.Kind(ctx.QueryParam("kind"))
	if kind == "" {
		kind = report.KindTabular
	}
	if !kind.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown artifact kind")
	}

	grades, err := api.service.Grades(reqCtx, std.ID, ctx.QueryParam("term"))
	if err != nil {
		return err
	}
	rows := make([]report.GradeRow, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, report.GradeRow{CourseCode: g.CourseCode, Score: g.Score})
	}
	res, err := api.reportSvc.Aggregate(reqCtx, std.ID, rows)
	if err != nil {
		return err
	}
	artifact, err := api.reportSvc.Generate(reqCtx, std, res, kind)
	if err != nil {
		return err
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+artifact.Filename+`"`)
	return ctx.Blob(http.StatusOK, artifact.ContentType, artifact.Content.Bytes())
}

// studentBulletinSend runs the full pipeline for one selected student.
func (api *studentApi) studentBulletinSend(ctx echo.Context) error {
	std, err := api.contextStudent(ctx)
	if err != nil {
		return err
	}
	summary, err := api.reportSvc.RunStudent(ctx.Request().Context(), std.ID, ctx.QueryParam("term"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *studentApi) contextStudent(ctx echo.Context) (student.Student, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return student.Student{}, errHttpNotFound
	}
	return api.service.GetByID(ctx.Request().Context(), id)
}
