//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/voxelsplace/voxmesh/api"
	"github.com/voxelsplace/voxmesh/vox"
)

func bytesFromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

// optionsFromJS reads an optional {importHidden, originsAtBottom, maxMaterialMaps, scale} object.
func optionsFromJS(args []js.Value, i int) vox.Options {
	var opts vox.Options
	if len(args) <= i || args[i].Type() != js.TypeObject {
		return opts
	}
	o := args[i]
	opts.ImportHidden = o.Get("importHidden").Truthy()
	opts.OriginsAtBottom = o.Get("originsAtBottom").Truthy()
	opts.MaxMaterialMaps = o.Get("maxMaterialMaps").Truthy()
	if s := o.Get("scale"); s.Type() == js.TypeNumber {
		opts.Scale = float32(s.Float())
	}
	return opts
}

func vox2glb(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing name or vox bytes")
	}
	out, err := api.VOXToGLB(args[0].String(), bytesFromJS(args[1]), optionsFromJS(args, 2))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func voxSummary(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("missing name or vox bytes")
	}
	out, err := api.VOXSummary(args[0].String(), bytesFromJS(args[1]), optionsFromJS(args, 2))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return js.ValueOf(out)
}

func packVox(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing files object")
	}
	filesObj := args[0]
	files := map[string][]byte{}
	keys := js.Global().Get("Object").Call("keys", filesObj)
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		files[k] = bytesFromJS(filesObj.Get(k))
	}
	out, err := api.PackVOX(files, optionsFromJS(args, 1), vox.PackCompZlib)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func pack2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	out, err := api.PackToGLB(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func main() {
	js.Global().Set("vox2glb", js.FuncOf(vox2glb))
	js.Global().Set("voxSummary", js.FuncOf(voxSummary))
	js.Global().Set("packVox", js.FuncOf(packVox))
	js.Global().Set("pack2glb", js.FuncOf(pack2glb))
	select {}
}
