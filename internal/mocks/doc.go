// Package mocks provides centralized mock implementations for testing.
//
// This package contains mock implementations of the store interfaces and
// supporting types used throughout the application, so individual test
// files don't redefine inline mocks. Each mock exposes function fields
// for customizable behavior and falls back to a simple in-memory default
// implementation when the field is nil.
package mocks
