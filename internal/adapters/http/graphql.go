package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	positionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ElementPosition",
		Fields: graphql.Fields{
			"kind":        &graphql.Field{Type: graphql.String},
			"id":          &graphql.Field{Type: graphql.String},
			"coordinates": &graphql.Field{Type: graphql.NewList(coordinateType)},
		},
	})

	skipType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SkipNotice",
		Fields: graphql.Fields{
			"element_id":   &graphql.Field{Type: graphql.String},
			"display_name": &graphql.Field{Type: graphql.String},
			"reason":       &graphql.Field{Type: graphql.String},
			"suggestion":   &graphql.Field{Type: graphql.String},
		},
	})

	reportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ImportReport",
		Fields: graphql.Fields{
			"import_id":               &graphql.Field{Type: graphql.String},
			"network_id":              &graphql.Field{Type: graphql.String},
			"records_read":            &graphql.Field{Type: graphql.Int},
			"lines_attached":          &graphql.Field{Type: graphql.Int},
			"dangling_lines_attached": &graphql.Field{Type: graphql.Int},
			"skipped":                 &graphql.Field{Type: graphql.NewList(skipType)},
		},
	})

	elementArgs := graphql.FieldConfigArgument{
		"network": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"id":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}
	resolveElement := func(kind domain.ElementKind) graphql.FieldResolveFn {
		return func(p graphql.ResolveParams) (interface{}, error) {
			ref := domain.ElementRef{Kind: kind, ID: p.Args["id"].(string)}
			pos, err := deps.Positions.GetPosition(p.Context, p.Args["network"].(string), ref)
			if errors.Is(err, domain.ErrPositionNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return positionToMap(*pos), nil
		}
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"linePosition": &graphql.Field{
				Type:        positionType,
				Description: "Position of a line",
				Args:        elementArgs,
				Resolve:     resolveElement(domain.KindLine),
			},
			"danglingLinePosition": &graphql.Field{
				Type:        positionType,
				Description: "Position of a dangling line",
				Args:        elementArgs,
				Resolve:     resolveElement(domain.KindDanglingLine),
			},
			"positions": &graphql.Field{
				Type:        graphql.NewList(positionType),
				Description: "All stored positions of a network",
				Args: graphql.FieldConfigArgument{
					"network": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					list, err := deps.Positions.ListPositions(p.Context, p.Args["network"].(string))
					if err != nil {
						return nil, err
					}
					result := make([]map[string]interface{}, 0, len(list))
					for _, pos := range list {
						result = append(result, positionToMap(pos))
					}
					return result, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"importPositions": &graphql.Field{
				Type:        reportType,
				Description: "Run a position import for a network",
				Args: graphql.FieldConfigArgument{
					"network": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Imports == nil {
						return nil, errors.New("imports are not configured")
					}
					res, err := deps.Imports.Import(p.Context, p.Args["network"].(string))
					if err != nil {
						return nil, err
					}
					return reportToMap(res.Report), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func positionToMap(p domain.ElementPosition) map[string]interface{} {
	coords := make([]map[string]interface{}, 0, len(p.Coordinates))
	for _, c := range p.Coordinates {
		coords = append(coords, map[string]interface{}{"lat": c.Lat, "lon": c.Lon})
	}
	return map[string]interface{}{
		"kind":        string(p.Element.Kind),
		"id":          p.Element.ID,
		"coordinates": coords,
	}
}

func reportToMap(r domain.ImportReport) map[string]interface{} {
	skipped := make([]map[string]interface{}, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		skipped = append(skipped, map[string]interface{}{
			"element_id":   s.ElementID,
			"display_name": s.DisplayName,
			"reason":       s.Reason,
			"suggestion":   s.Suggestion,
		})
	}
	return map[string]interface{}{
		"import_id":               r.ImportID,
		"network_id":              r.NetworkID,
		"records_read":            r.RecordsRead,
		"lines_attached":          r.LinesAttached,
		"dangling_lines_attached": r.DanglingLinesAttached,
		"skipped":                 skipped,
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
