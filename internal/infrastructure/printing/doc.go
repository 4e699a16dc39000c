// Package printing renders the HTML table of a PDF export through headless
// Chrome driven over the DevTools protocol.
//
//	renderer, err := NewChromedpRenderer(ConfigFromSettings(cfg.Printing, log))
//	...
//	result, err := renderer.Render(ctx, &RenderRequest{
//	    HTML:        table,
//	    PaperSize:   PaperSizeA4,
//	    Orientation: OrientationLandscape,
//	})
package printing
