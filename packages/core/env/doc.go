// Package env loads .env files and substitutes {{name}} placeholders in
// curl commands and configured header values.
//
// Names resolve against values captured from earlier responses first, then
// against variables loaded from a .env file. {{$NAME}} reads the process
// environment. Placeholders that cannot be resolved are left in place.
package env
