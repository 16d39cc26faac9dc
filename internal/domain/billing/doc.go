// Package billing contains the billing and settlement domain model: sale
// invoices with derived payment status, FIFO allocation of customer payments
// across outstanding invoices, and vendor-contract advances with a
// held/returned lifecycle.
//
// Key Aggregates:
//   - Invoice: A recorded sale with total, paid and pending amounts
//   - Contract: A vendor contract holding an advance deposit
//
// The settlement key is the customer name; the customer directory guarantees
// it is unique within an account.
package billing
