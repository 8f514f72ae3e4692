package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/konatebeh20/EduTrack/core/report"
	"github.com/konatebeh20/EduTrack/core/student"
)

type runApi struct {
	service *report.Service
}

func registerRunAPI(g *echo.Group, svc *report.Service) {
	api := runApi{service: svc}

	g.POST("/runs", api.runCreate)
}

type runRequest struct {
	Search  string `json:"search"`
	Program string `json:"program"`
	Term    string `json:"term"`
}

// runCreate triggers a batch run over the selected cohort and returns
// its summary once every student has been processed.
func (api *runApi) runCreate(ctx echo.Context) error {
	data := new(runRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	summary, err := api.service.Run(ctx.Request().Context(), report.RunOptions{
		Filter: student.CohortFilter{Search: data.Search, Program: data.Program},
		Term:   data.Term,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}
