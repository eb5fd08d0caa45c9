package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/homeward/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	geoPointInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "GeoPointInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"lat": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"lng": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoBounds",
		Fields: graphql.Fields{
			"northeast": &graphql.Field{Type: geoPointType},
			"southwest": &graphql.Field{Type: geoPointType},
		},
	})

	profileType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Profile",
		Fields: graphql.Fields{
			"name":         &graphql.Field{Type: graphql.String},
			"icon":         &graphql.Field{Type: graphql.String},
			"icon_size":    &graphql.Field{Type: graphql.Int},
			"steps":        &graphql.Field{Type: graphql.Int},
			"home":         &graphql.Field{Type: geoPointType},
			"aux_display":  &graphql.Field{Type: graphql.Boolean},
			"curve":        &graphql.Field{Type: graphql.Boolean},
			"zoom_padding": &graphql.Field{Type: graphql.Int},
			"interval": &graphql.Field{
				Type:        graphql.String,
				Description: "Time between two animation ticks",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Profile).Interval().String(), nil
				},
			},
		},
	})

	frameType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Frame",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"profile":        &graphql.Field{Type: graphql.String},
			"icon":           &graphql.Field{Type: graphql.String},
			"tick":           &graphql.Field{Type: graphql.Int},
			"counter":        &graphql.Field{Type: graphql.Int},
			"steps":          &graphql.Field{Type: graphql.Int},
			"live":           &graphql.Field{Type: geoPointType},
			"position":       &graphql.Field{Type: geoPointType},
			"home":           &graphql.Field{Type: geoPointType},
			"heading":        &graphql.Field{Type: graphql.Float},
			"distance_miles": &graphql.Field{Type: graphql.Float},
			"zoom":           &graphql.Field{Type: graphql.Int},
			"bounds":         &graphql.Field{Type: boundsType},
			"time":           &graphql.Field{Type: graphql.DateTime},
		},
	})

	zoomType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ZoomFit",
		Fields: graphql.Fields{
			"bounds": &graphql.Field{Type: boundsType},
			"zoom":   &graphql.Field{Type: graphql.Int},
		},
	})

	fromTo := graphql.FieldConfigArgument{
		"from": &graphql.ArgumentConfig{Type: graphql.NewNonNull(geoPointInput)},
		"to":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(geoPointInput)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"profiles": &graphql.Field{
				Type:        graphql.NewList(profileType),
				Description: "List tracking profiles",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Profiles.List(), nil
				},
			},
			"profile": &graphql.Field{
				Type:        profileType,
				Description: "Get a profile by name",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Profiles.Get(p.Args["name"].(string))
				},
			},
			"distance": &graphql.Field{
				Type:        graphql.Float,
				Description: "Great-circle distance between two points",
				Args: graphql.FieldConfigArgument{
					"from": fromTo["from"],
					"to":   fromTo["to"],
					"km":   &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Geo.Distance(pointArg(p, "from"), pointArg(p, "to"), p.Args["km"].(bool))
				},
			},
			"bearing": &graphql.Field{
				Type:        graphql.Float,
				Description: "Planar heading in degrees from one point toward another",
				Args:        fromTo,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Geo.Bearing(pointArg(p, "from"), pointArg(p, "to"))
				},
			},
			"zoom": &graphql.Field{
				Type:        zoomType,
				Description: "Largest zoom at which all points fit in the viewport",
				Args: graphql.FieldConfigArgument{
					"points": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(geoPointInput)))},
					"width":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"height": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw, _ := p.Args["points"].([]interface{})
					points := make([]domain.GeoPoint, 0, len(raw))
					for _, r := range raw {
						points = append(points, toPoint(r))
					}
					viewport := domain.PixelDimensions{Width: p.Args["width"].(int), Height: p.Args["height"].(int)}
					return deps.Geo.Zoom(points, viewport)
				},
			},
			"frame": &graphql.Field{
				Type:        frameType,
				Description: "Latest rendered frame of a profile",
				Args: graphql.FieldConfigArgument{
					"profile": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Frames.Latest(p.Context, p.Args["profile"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func pointArg(p graphql.ResolveParams, name string) domain.GeoPoint {
	return toPoint(p.Args[name])
}

func toPoint(v interface{}) domain.GeoPoint {
	m, _ := v.(map[string]interface{})
	lat, _ := m["lat"].(float64)
	lng, _ := m["lng"].(float64)
	return domain.GeoPoint{Lat: lat, Lng: lng}
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
