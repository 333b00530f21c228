// Package models holds the GORM persistence models of the checkout engine.
//
// Domain types stay free of ORM tags; each model converts with ToDomain and
// a <Name>ModelFromDomain constructor. Money columns are decimal(18,4) and
// read back as shopspring decimals.
package models
