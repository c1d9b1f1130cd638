package routes

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/railtimetable/pkg/dataaggregator"
	"github.com/travigo/railtimetable/pkg/dataaggregator/query"
	"github.com/travigo/railtimetable/pkg/departureboard"
	"github.com/travigo/railtimetable/pkg/timetable"
)

func BoardsRouter(router fiber.Router) {
	router.Get("/:crs", getBoard)
	router.Get("/:crs/layout", getBoardLayout)
}

func getBoard(c *fiber.Ctx) error {
	boardQuery, err := parseBoardQuery(c)
	if err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	board, err := dataaggregator.Lookup[*timetable.DepartureBoard](c.UserContext(), boardQuery)
	if err != nil {
		return lookupError(c, err)
	}

	return sendReduced(c, board)
}

func getBoardLayout(c *fiber.Ctx) error {
	boardQuery, err := parseBoardQuery(c)
	if err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	layout, err := dataaggregator.Lookup[*departureboard.BoardLayout](c.UserContext(), query.BoardLayout{
		DepartureBoard: boardQuery,
	})
	if err != nil {
		return lookupError(c, err)
	}

	return sendReduced(c, layout)
}

func parseBoardQuery(c *fiber.Ctx) (query.DepartureBoard, error) {
	crs := strings.ToUpper(c.Params("crs"))
	if len(crs) != 3 {
		return query.DepartureBoard{}, fmt.Errorf("station %q should be a three letter CRS code", c.Params("crs"))
	}

	startDateTime := time.Now()
	if value := c.Query("from"); value != "" {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return query.DepartureBoard{}, errors.New("parameter from should be an RFC3339/ISO8601 datetime")
		}
		startDateTime = parsed
	}

	period, err := iso8601.ParseISO8601(c.Query("period", departureboard.DefaultPeriod))
	if err != nil {
		return query.DepartureBoard{}, errors.New("parameter period should be an ISO8601 duration")
	}
	if !period.Shift(startDateTime).After(startDateTime) {
		return query.DepartureBoard{}, errors.New("parameter period should be positive")
	}

	timeType, err := departureboard.ModeTimeType(c.Query("mode", "departures"), c.QueryBool("working"))
	if err != nil {
		return query.DepartureBoard{}, err
	}

	return query.DepartureBoard{
		Station:             crs,
		StartDateTime:       startDateTime,
		Period:              period,
		TimeType:            timeType,
		Destination:         strings.ToUpper(c.Query("destination")),
		PermanentOnly:       c.QueryBool("permanent_only"),
		IncludeNonPassenger: c.QueryBool("include_non_passenger"),
	}, nil
}

// sendReduced sends the basic fields, or every field with ?detailed=true
func sendReduced(c *fiber.Ctx, value interface{}) error {
	groups := []string{"basic"}
	if c.QueryBool("detailed") {
		groups = append(groups, "detailed")
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, value)
	if err != nil {
		c.Status(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sheriff could not reduce response",
		})
	}

	return c.JSON(reduced)
}

func lookupError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, dataaggregator.ErrNotFound) || errors.Is(err, timetable.ErrNotRunningService) {
		status = fiber.StatusNotFound
	}

	c.Status(status)
	return c.JSON(fiber.Map{
		"error": err.Error(),
	})
}
