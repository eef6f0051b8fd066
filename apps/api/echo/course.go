package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(
	g *echo.Group,
	authMW echo.MiddlewareFunc,
	svc *course.Service,
	validate *validator.Validate,
) {
	api := courseApi{svc: svc, validate: validate}

	cg := g.Group("/courses", authMW)
	cg.GET("", api.query)
	cg.POST("", api.create, roleMiddleware(user.RoleAdmin, user.RoleTeacher))
	cg.GET("/:id/enrollments", api.queryEnrollments)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	tc, err := getContextTenant(ctx)
	if err != nil {
		return err
	}

	var ord Ordering
	ord.Bind(ctx, course.SortableFields...)

	courses, err := api.svc.QueryAll(ctx.Request().Context(), tc.DB, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tc, err := getContextTenant(ctx)
	if err != nil {
		return err
	}
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), tc.DB, data, p.ID)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) queryEnrollments(ctx echo.Context) error {
	tc, err := getContextTenant(ctx)
	if err != nil {
		return err
	}
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var owner null.String
	if uid := core.CleanString(ctx.QueryParam("user_id")); uid != "" {
		owner = null.StringFrom(uid)
	}
	if err = user.RequireOwnership(p, owner); err != nil {
		return err
	}
	// students without an explicit filter only see their own enrollments
	if p.Role == user.RoleStudent && !owner.Valid {
		owner = null.StringFrom(p.ID)
	}

	if _, err = api.svc.GetByID(ctx.Request().Context(), tc.DB, ctx.Param("id")); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding course by ID")
	}

	enrollments, err := api.svc.QueryEnrollments(ctx.Request().Context(), tc.DB, ctx.Param("id"), owner)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, enrollments)
}
