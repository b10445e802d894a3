// Package capture extracts values from responses so later requests of the
// same example can refer to them.
//
// A capture names a value and where it comes from:
//
//	@capture order_id body data.id
//	@capture next header Location
//	@capture code status
//
// Body paths use gjson syntax. Captured values are substituted into later
// commands as {{order_id}}.
package capture
