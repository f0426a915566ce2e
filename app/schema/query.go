// Package schema is the read-only GraphQL view of the shop: the price list,
// star ratings and, for admins, the archived review table.
package schema

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/app/services"
	"github.com/shashiranjanraj/laundry/pkg/collection"
	gql "github.com/shashiranjanraj/laundry/pkg/graphql"
	"github.com/shashiranjanraj/laundry/pkg/middleware"
)

var errAdminOnly = errors.New("admin only")

// Resolvers are the services the query fields read from.
type Resolvers struct {
	Pricing *services.PricingService
	Roles   *services.RoleService
	Stars   *services.StarService
}

var serviceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Service",
	Fields: graphql.Fields{
		"serviceType": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"slug": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				slug, ok := models.SlugFor(p.Source.(models.ServicePricing).ServiceType)
				if !ok {
					return nil, nil
				}
				return slug, nil
			},
		},
		"defaultCost": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
	},
})

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(models.User).ID.Hex(), nil
			},
		},
		"username":    &graphql.Field{Type: graphql.String},
		"email":       &graphql.Field{Type: graphql.String},
		"fullname":    &graphql.Field{Type: graphql.String},
		"phoneNumber": &graphql.Field{Type: graphql.String},
		"role":        &graphql.Field{Type: graphql.String},
	},
})

var summaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "StarSummary",
	Fields: graphql.Fields{
		"count":   &graphql.Field{Type: graphql.Int},
		"average": &graphql.Field{Type: graphql.Float},
	},
})

// Query builds the root query type.
func Query(r Resolvers) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"services": &graphql.Field{
				Type: graphql.NewList(serviceType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Pricing.All(p.Context)
				},
			},
			"service": &graphql.Field{
				Type: serviceType,
				Args: graphql.FieldConfigArgument{
					"slug": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Pricing.Get(p.Context, p.Args["slug"].(string))
				},
			},
			"users": &graphql.Field{
				Type: graphql.NewList(userType),
				Args: graphql.FieldConfigArgument{
					"role": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if c, ok := middleware.Claims(p.Context); !ok || c.Role != models.RoleAdmin {
						return nil, errAdminOnly
					}
					users, err := r.Roles.List(p.Context)
					if err != nil {
						return nil, err
					}
					if role, ok := p.Args["role"].(string); ok && role != "" {
						users = collection.Filter(users, func(u models.User) bool { return u.Role == role })
					}
					return users, nil
				},
			},
			"starSummary": &graphql.Field{
				Type: summaryType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.Stars.Summary(p.Context)
				},
			},
		},
	})
}

// New builds the executable schema.
func New(r Resolvers) (graphql.Schema, error) {
	return gql.NewSchema(Query(r))
}
