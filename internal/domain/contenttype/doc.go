// Package contenttype defines the content-type schema aggregate and the gorm
// models of the tables it is stored in.
package contenttype
