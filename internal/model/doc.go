// Package model contains the wire types returned by the ammonit REST backend.
package model
