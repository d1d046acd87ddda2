package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// ListPositionsHandler returns the stored positions of a network, optionally
// filtered by element kind.
func ListPositionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		network := c.Params("network")
		kind := domain.ElementKind(c.Query("kind"))
		if kind != "" && !kind.Valid() {
			return errBadRequest(c, "kind must be line or dangling_line")
		}

		positions, err := deps.Positions.ListPositions(c.UserContext(), network)
		if err != nil {
			return writeServiceError(c, err)
		}
		if kind != "" {
			filtered := positions[:0:0]
			for _, p := range positions {
				if p.Element.Kind == kind {
					filtered = append(filtered, p)
				}
			}
			positions = filtered
		}

		page, pg := paginate(c, positions)
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// GetLinePositionHandler returns the position of one line.
func GetLinePositionHandler(deps *Dependencies) fiber.Handler {
	return elementPositionHandler(deps, domain.KindLine)
}

// GetDanglingLinePositionHandler returns the position of one dangling line.
func GetDanglingLinePositionHandler(deps *Dependencies) fiber.Handler {
	return elementPositionHandler(deps, domain.KindDanglingLine)
}

func elementPositionHandler(deps *Dependencies, kind domain.ElementKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "element id is required")
		}
		ref := domain.ElementRef{Kind: kind, ID: id}
		pos, err := deps.Positions.GetPosition(c.UserContext(), c.Params("network"), ref)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(pos)
	}
}

// ImportHandler runs a position import for a network. With async=true the request
// is queued for a worker and 202 is returned.
func ImportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		network := c.Params("network")
		if network == "" {
			return errBadRequest(c, "network is required")
		}

		if c.QueryBool("async", false) {
			if deps.Requests == nil {
				return errUnavailable(c, "asynchronous imports are not configured")
			}
			req := &domain.ImportRequest{NetworkID: network, RequestedBy: c.IP()}
			if err := deps.Requests.PublishImportRequest(c.UserContext(), req); err != nil {
				return writeServiceError(c, err)
			}
			return c.Status(fiber.StatusAccepted).JSON(req)
		}

		if deps.Imports == nil {
			return errUnavailable(c, "imports are not configured")
		}
		res, err := deps.Imports.Import(c.UserContext(), network)
		if err != nil {
			return writeServiceError(c, err)
		}
		LoggerFromCtx(c.UserContext()).Info("import finished via api",
			"network", network, "import_id", res.Report.ImportID)
		return c.Status(fiber.StatusCreated).JSON(res.Report)
	}
}
