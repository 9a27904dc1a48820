// Package filetype classifies files for the intake pipeline: extension and
// MIME lookups, magic-byte content sniffing, coarse categories, accept-filter
// tokens, and aspect-ratio classification from decoded media dimensions.
//
// The package is pure lookup and header parsing. It never loads full file
// content: sniffing reads at most SniffLen bytes and dimension probing reads
// only format headers (image.DecodeConfig for images, an ISO-BMFF box walk
// for MP4-family video).
//
// # Registry
//
// Registry maps extensions to MIME types and back, case-insensitively and
// dot-agnostically. Extensions with several plausible MIME types (zip, midi)
// return all of them; membership means "any of".
//
//	reg := filetype.DefaultRegistry()
//	reg.MIMEForExtension("JPG")     // ["image/jpeg"]
//	reg.IsTextExtension(".md")      // true
//	reg.RegisterExtension(".fountain", "text/x-fountain")
//
// # Accept tokens
//
// Filter strings are resolved once into tagged tokens, each a category,
// an exact MIME type, or an extension:
//
//	filter, err := filetype.ParseFilter([]string{"image/*", ".pdf", "video/mp4"})
//	filter.Admits("image/png", ".png") // true
//
// # Aspect ratios
//
// ClassifyDimensions reduces pixel dimensions by GCD and snaps them to the
// nearest common ratio; RatiosMatch compares ratio strings within a 0.15
// absolute tolerance.
//
//	filetype.ClassifyDimensions(1280, 720) // 16:9
//	filetype.RatiosMatch("4:5", "2:3")     // true
package filetype
