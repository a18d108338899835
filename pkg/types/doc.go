// Package types defines the entity, field value, and collaborator interfaces
// shared by the fixture parser, hook dispatcher, and lifecycle tracker, along
// with the standard error values for the larder harness.
package types
