package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/uzima/alama/core/student"
)

type studentApi struct {
	service *student.Service
}

func registerStudentAPI(e *echo.Echo, svc *student.Service) {
	api := studentApi{service: svc}

	// HTML pages
	e.GET("/", api.indexPage)
	e.POST("/submit", api.formSubmit)
	e.GET("/dashboard", api.dashboardPage)

	// JSON API
	g := e.Group("/api")
	g.GET("/ping", api.ping)
	g.POST("/score", api.scorePreview)
	g.GET("/students", api.studentQuery)
	g.POST("/students", api.studentCreate)
	g.GET("/students/summary", api.studentSummary)
	g.GET("/students/:id", api.studentRetrieve)
}

// Handlers

func (api *studentApi) indexPage(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "index", nil)
}

func (api *studentApi) dashboardPage(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "dashboard", nil)
}

// formSubmit handles the intake form: score, persist, then send the browser
// to the dashboard.
func (api *studentApi) formSubmit(ctx echo.Context) error {
	data := new(student.NewStudent)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if _, err := api.service.Create(*data); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (api *studentApi) studentCreate(ctx echo.Context) error {
	data := new(student.NewStudent)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	s, err := api.service.Create(*data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) studentQuery(ctx echo.Context) error {
	var filter StudentFilter
	filter.Bind(ctx)

	if filter.IsZero() {
		students, err := api.service.QueryAll()
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, students)
	}

	students, err := api.service.Filter(filter.QueryFilter())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) studentRetrieve(ctx echo.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return errHttpNotFound
	}
	s, err := api.service.GetByID(id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) studentSummary(ctx echo.Context) error {
	sum, err := api.service.Summarize()
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sum)
}

// scorePreview scores the given attributes without persisting anything.
func (api *studentApi) scorePreview(ctx echo.Context) error {
	data := new(student.Attributes)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.service.Score(*data))
}

func (api *studentApi) ping(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "pong")
}
