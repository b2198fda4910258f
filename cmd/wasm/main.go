//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/shapeboard/shapeboard/internal/board"
	"github.com/shapeboard/shapeboard/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	// Create the engine API object
	boardEngine := js.Global().Get("Object").New()

	// --- Settings (UI controls → engine) ---
	boardEngine.Set("setColor", js.FuncOf(setColor))
	boardEngine.Set("setRadius", js.FuncOf(setRadius))
	boardEngine.Set("setSize", js.FuncOf(setSize))

	// --- Input events (canvas → engine) ---
	boardEngine.Set("click", js.FuncOf(click))
	boardEngine.Set("mouseDown", js.FuncOf(mouseDown))
	boardEngine.Set("mouseMove", js.FuncOf(mouseMove))
	boardEngine.Set("mouseUp", js.FuncOf(mouseUp))
	boardEngine.Set("touchStart", js.FuncOf(touchStart))
	boardEngine.Set("touchMove", js.FuncOf(touchMove))
	boardEngine.Set("touchEnd", js.FuncOf(touchEnd))
	boardEngine.Set("wheel", js.FuncOf(wheel))
	boardEngine.Set("keyDown", js.FuncOf(keyDown))
	boardEngine.Set("clear", js.FuncOf(clearBoard))
	boardEngine.Set("dispatch", js.FuncOf(dispatch))

	// --- Queries (frontend ← engine) ---
	boardEngine.Set("render", js.FuncOf(render))
	boardEngine.Set("hitTest", js.FuncOf(hitTest))
	boardEngine.Set("getInfo", js.FuncOf(getInfo))
	boardEngine.Set("getSelection", js.FuncOf(getSelection))
	boardEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	boardEngine.Set("getCircles", js.FuncOf(getCircles))
	boardEngine.Set("getState", js.FuncOf(getState))
	boardEngine.Set("getSettings", js.FuncOf(getSettings))

	// Register on global scope
	js.Global().Set("shapeBoard", boardEngine)

	// Signal that WASM is ready
	js.Global().Set("shapeBoardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// effectValue converts an effect into the object the host reacts to.
func effectValue(eff board.Effect) js.Value {
	return js.ValueOf(map[string]interface{}{
		"redraw":         eff.Redraw,
		"preventDefault": eff.PreventDefault,
		"state":          string(eff.State),
	})
}

// point reads (x, y) from the first two arguments.
func point(args []js.Value) (float64, float64, bool) {
	if len(args) < 2 {
		return 0, 0, false
	}
	return args[0].Float(), args[1].Float(), true
}

// --- Settings Handlers ---

func setColor(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetColor(args[0].String())
	return nil
}

func setRadius(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		eng.SetRadiusInput("")
		return nil
	}
	// Input elements hand over strings, but accept numbers too.
	if args[0].Type() == js.TypeNumber {
		eng.SetRadius(args[0].Int())
		return nil
	}
	eng.SetRadiusInput(args[0].String())
	return nil
}

func setSize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.SetSize(args[0].Int(), args[1].Int())
	return nil
}

// --- Input Handlers ---

func click(this js.Value, args []js.Value) interface{} {
	x, y, ok := point(args)
	if !ok {
		return nil
	}
	return effectValue(eng.Click(x, y))
}

func mouseDown(this js.Value, args []js.Value) interface{} {
	x, y, ok := point(args)
	if !ok {
		return nil
	}
	return effectValue(eng.PointerDown(x, y))
}

func mouseMove(this js.Value, args []js.Value) interface{} {
	x, y, ok := point(args)
	if !ok {
		return nil
	}
	return effectValue(eng.PointerMove(x, y))
}

func mouseUp(this js.Value, args []js.Value) interface{} {
	return effectValue(eng.PointerUp())
}

func touchStart(this js.Value, args []js.Value) interface{} {
	x, y, ok := point(args)
	if !ok {
		return nil
	}
	return effectValue(eng.TouchStart(x, y))
}

func touchMove(this js.Value, args []js.Value) interface{} {
	x, y, ok := point(args)
	if !ok {
		return nil
	}
	return effectValue(eng.TouchMove(x, y))
}

func touchEnd(this js.Value, args []js.Value) interface{} {
	return effectValue(eng.TouchEnd())
}

func wheel(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	return effectValue(eng.Wheel(args[0].Float()))
}

func keyDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	return effectValue(eng.KeyDown(args[0].String()))
}

func clearBoard(this js.Value, args []js.Value) interface{} {
	return effectValue(eng.Clear())
}

func dispatch(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing event JSON"})
	}
	eff, err := eng.DispatchJSON(args[0].String())
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return effectValue(eff)
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	x, y, ok := point(args)
	if !ok {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(x, y))
}

func getInfo(this js.Value, args []js.Value) interface{} {
	info := eng.Info()
	return js.ValueOf(map[string]interface{}{
		"position": info.Position,
		"radius":   info.Radius,
		"color":    info.Color,
	})
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getCircles(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetCircles())
}

func getState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(string(eng.GetState()))
}

func getSettings(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSettings())
}
