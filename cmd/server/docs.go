// Package main Drogueria Back-office API
//
//	@title						Drogueria Back-office API
//	@version					1.0
//	@description				Order lifecycle, dashboards and inventory alerts for the pharmacy back office
//
//	@contact.name				Drogueria Support
//
//	@license.name				Proprietary
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					Order
//	@tag.description			Order state transitions
//
//	@tag.name					Dashboard
//	@tag.description			Customer, employee and admin summaries
//
//	@tag.name					Inventory
//	@tag.description			Catalog stock and expiry alerts
package main
