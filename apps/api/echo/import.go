package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/konatebeh20/EduTrack/core/ingest"
	spreadsheetsvc "github.com/konatebeh20/EduTrack/services/spreadsheet"
)

type importApi struct {
	service *ingest.Service
}

func registerImportAPI(g *echo.Group, svc *ingest.Service) {
	api := importApi{service: svc}

	ig := g.Group("/imports")
	ig.POST("/students", api.importStudents)
	ig.POST("/courses", api.importCourseUnits)
	ig.POST("/grades", api.importGrades)
}

// Handlers

func (api *importApi) importStudents(ctx echo.Context) error {
	rows, err := parseUpload(ctx)
	if err != nil {
		return err
	}
	summary, err := api.service.ImportStudents(ctx.Request().Context(), rows)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *importApi) importCourseUnits(ctx echo.Context) error {
	rows, err := parseUpload(ctx)
	if err != nil {
		return err
	}
	summary, err := api.service.ImportCourseUnits(ctx.Request().Context(), rows)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *importApi) importGrades(ctx echo.Context) error {
	rows, err := parseUpload(ctx)
	if err != nil {
		return err
	}
	summary, err := api.service.ImportGrades(ctx.Request().Context(), rows)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

// parseUpload reads the uploaded workbook from the "file" form field.
func parseUpload(ctx echo.Context) ([]ingest.Row, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, `missing "file" form field`)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	rows, err := spreadsheetsvc.Parse(f)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return rows, nil
}
