package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/travigo/railtimetable/pkg/dataaggregator"
	"github.com/travigo/railtimetable/pkg/dataaggregator/query"
	"github.com/travigo/railtimetable/pkg/timetable"
)

func ServicesRouter(router fiber.Router) {
	router.Get("/rsid/:rsid/:date", getServicesByRSID)
	router.Get("/:uid/:date", getService)
}

type serviceResponse struct {
	UID          string                `json:"uid" groups:"basic"`
	Date         timetable.Date        `json:"date" groups:"basic"`
	Service      *timetable.Service    `json:"service" groups:"basic"`
	Origins      timetable.PortionEnds `json:"origins" groups:"basic"`
	Destinations timetable.PortionEnds `json:"destinations" groups:"basic"`

	DivideFrom *associationResponse  `json:"divide_from,omitempty" groups:"basic"`
	EnRoute    []associationResponse `json:"en_route,omitempty" groups:"basic"`
	JoinTo     *associationResponse  `json:"join_to,omitempty" groups:"basic"`
}

type associationResponse struct {
	Category      timetable.AssociationCategory `json:"category" groups:"basic"`
	Location      string                        `json:"location" groups:"basic"`
	PrimaryUID    string                        `json:"primary_uid" groups:"basic"`
	PrimaryDate   timetable.Date                `json:"primary_date" groups:"basic"`
	SecondaryUID  string                        `json:"secondary_uid" groups:"basic"`
	SecondaryDate timetable.Date                `json:"secondary_date" groups:"basic"`
}

// newServiceResponse flattens a resolved service. The portions reference
// each other, so only their keys are sent.
func newServiceResponse(service *timetable.FullService) serviceResponse {
	response := serviceResponse{
		UID:          service.UID(),
		Date:         service.Date,
		Service:      service.Service(),
		Origins:      service.Origins(nil),
		Destinations: service.Destinations(nil),
	}

	if service.DivideFrom != nil {
		divideFrom := newAssociationResponse(service.DivideFrom)
		response.DivideFrom = &divideFrom
	}
	for _, association := range service.EnRoute {
		response.EnRoute = append(response.EnRoute, newAssociationResponse(association))
	}
	if service.JoinTo != nil {
		joinTo := newAssociationResponse(service.JoinTo)
		response.JoinTo = &joinTo
	}

	return response
}

func newAssociationResponse(association *timetable.FullAssociation) associationResponse {
	return associationResponse{
		Category:      association.Association.Category,
		Location:      association.Association.Location,
		PrimaryUID:    association.Primary.UID(),
		PrimaryDate:   association.Primary.Date,
		SecondaryUID:  association.Secondary.UID(),
		SecondaryDate: association.Secondary.Date,
	}
}

func getService(c *fiber.Ctx) error {
	date, err := timetable.ParseDate(c.Params("date"))
	if err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter date should be formatted YYYY-MM-DD",
		})
	}

	service, err := dataaggregator.Lookup[*timetable.FullService](c.UserContext(), query.Service{
		UID:                 strings.ToUpper(c.Params("uid")),
		Date:                date,
		PermanentOnly:       c.QueryBool("permanent_only"),
		IncludeNonPassenger: c.QueryBool("include_non_passenger"),
	})
	if err != nil {
		return lookupError(c, err)
	}

	return sendReduced(c, newServiceResponse(service))
}

func getServicesByRSID(c *fiber.Ctx) error {
	date, err := timetable.ParseDate(c.Params("date"))
	if err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter date should be formatted YYYY-MM-DD",
		})
	}

	rsid := strings.ToUpper(c.Params("rsid"))
	if len(rsid) != 6 && len(rsid) != 8 {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter rsid should be six or eight characters",
		})
	}

	services, err := dataaggregator.Lookup[[]*timetable.FullService](c.UserContext(), query.ServicesByRSID{
		RSID:                rsid,
		Date:                date,
		PermanentOnly:       c.QueryBool("permanent_only"),
		IncludeNonPassenger: c.QueryBool("include_non_passenger"),
	})
	if err != nil {
		return lookupError(c, err)
	}

	responses := make([]serviceResponse, 0, len(services))
	for _, service := range services {
		responses = append(responses, newServiceResponse(service))
	}

	return sendReduced(c, responses)
}
