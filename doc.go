// Package composer is the layer composition and interaction engine of a 2D
// editor: text and image layers placed on a fixed-size project canvas that
// is fitted, centered and redrawn inside a resizable viewport.
//
// # Quick start
//
// An [Editor] wires the pieces together. Hosts feed it pointer events and
// resizes, call [Editor.Update] once per tick and fire its frame loop once
// per display frame:
//
//	ed := composer.NewEditor(composer.EditorOptions{
//		Project:  composer.Dimension{Width: 800, Height: 600},
//		Viewport: composer.Dimension{Width: 1024, Height: 768},
//	})
//	defer ed.Close()
//	ed.AttachSurface(surface)
//
//	id := ed.Session.AddTextLayer("Hello", composer.WithPosition(composer.Position{Top: 100, Left: 100}))
//	ed.Controller.PointerDown(x, y)
//
//	ed.Update(dt)      // input, finished decodes, redraw check
//	ed.Frames.Fire()   // draws at most one frame
//
// The ebitenhost package provides a ready-made window; ggsurface renders
// frames headlessly to PNG.
//
// # Coordinate spaces
//
// Layers live in model space, the project's own coordinate system. The
// viewport transform ([ComputeTransform]) scales the project down to fit
// the viewport with [ViewportPadding] on each side, never scaling up, and
// centers it. Pointer events arrive in viewport space; the controller maps
// points with [ViewportTransform.ToModel] and drag deltas with
// [ViewportTransform.DeltaToModel]. Rendering and hit testing compute the
// transform through the same function on every use.
//
// # State and redraw
//
// [EditSession] is the single source of truth. It is only written through
// its mutation methods; each effective mutation bumps a generation counter
// and notifies subscribers. The [Scheduler] keeps at most one frame
// request pending and replaces it when state changes again before it
// fires, so a burst of mutations draws once.
//
// # Assets
//
// [AssetCache] decodes images on background goroutines and memoizes them
// by source key. A frame that needs a bitmap that is not ready skips the
// layer and starts the decode; the frame after [AssetCache.Pump] applies
// the result draws it. Failed keys are remembered and never retried.
//
// # Errors
//
// [ErrLayerNotFound], [ErrAssetDecodeFailure] and [ErrStaleSurface] are
// absorbed locally: they degrade the picture, never stop it.
package composer
