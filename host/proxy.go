package host

import "github.com/tetratelabs/wazero/api"

// Proxy builds a core wasm module that imports every function of the host
// module under Name() and re-exports it under the same name. Host modules
// cannot be called through ExportedFunction; instantiating the proxy after
// Instantiate gives callers a regular module that forwards to the table.
func (m *Module) Proxy() []byte {
	funcs := m.funcs()
	n := uint32(len(funcs))

	types := encodeULEB128(n)
	imports := encodeULEB128(n)
	decls := encodeULEB128(n)
	exports := encodeULEB128(n)
	code := encodeULEB128(n)

	for i, f := range funcs {
		idx := uint32(i)

		types = append(types, 0x60)
		types = appendValueTypes(types, f.params)
		types = appendValueTypes(types, f.results)

		imports = appendName(imports, m.options.ModuleName)
		imports = appendName(imports, f.name)
		imports = append(imports, 0x00) // func
		imports = append(imports, encodeULEB128(idx)...)

		decls = append(decls, encodeULEB128(idx)...)

		exports = appendName(exports, f.name)
		exports = append(exports, 0x00) // func
		exports = append(exports, encodeULEB128(n+idx)...)

		body := []byte{0x00} // no locals
		for p := range f.params {
			body = append(body, 0x20) // local.get
			body = append(body, encodeULEB128(uint32(p))...)
		}
		body = append(body, 0x10) // call
		body = append(body, encodeULEB128(idx)...)
		body = append(body, 0x0b) // end

		code = append(code, encodeULEB128(uint32(len(body)))...)
		code = append(code, body...)
	}

	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	wasm = appendSection(wasm, 0x01, types)
	wasm = appendSection(wasm, 0x02, imports)
	wasm = appendSection(wasm, 0x03, decls)
	wasm = appendSection(wasm, 0x07, exports)
	wasm = appendSection(wasm, 0x0a, code)
	return wasm
}

func appendSection(dst []byte, id byte, section []byte) []byte {
	dst = append(dst, id)
	dst = append(dst, encodeULEB128(uint32(len(section)))...)
	return append(dst, section...)
}

func appendName(dst []byte, name string) []byte {
	dst = append(dst, encodeULEB128(uint32(len(name)))...)
	return append(dst, name...)
}

// api.ValueType values are the wasm binary encodings.
func appendValueTypes(dst []byte, vts []api.ValueType) []byte {
	dst = append(dst, encodeULEB128(uint32(len(vts)))...)
	return append(dst, vts...)
}

func encodeULEB128(v uint32) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		result = append(result, b)
		if v == 0 {
			return result
		}
	}
}
