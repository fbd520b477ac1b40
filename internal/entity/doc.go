// Package entity scans C# entity class declarations into an in-memory model.
//
// The scanner is line oriented. It recognizes a constrained subset of
// declaration shapes:
//   - attribute lists such as [Table("Orders")], [Column("OrderID")] and
//     [ForeignKey("CustomerID")], possibly split over several lines or leading a
//     member on the same line
//   - public class declarations
//   - auto-implemented properties: public <Type> <Name> { get; set; }
//
// Everything else is skipped. Properties are classified as stored columns or
// navigations by the spelling of their declared type.
package entity
