package wasmhost

import (
	"bytes"
	"io"

	"github.com/edgekit/bindlike"
)

func (i *Instance) reqNew(handleOut int32) int32 {
	rhid, _ := i.requests.New()
	i.abilog.Debug().Msgf("req_new: handle=%d", rhid)
	if err := i.memory.PutUint32(uint32(rhid), int64(handleOut)); err != nil {
		return int32(ErrGeneric)
	}
	return int32(StatusOK)
}

func (i *Instance) reqMethodSet(handle, addr, size int32) int32 {
	r := i.requests.Get(int(handle))
	if r == nil {
		i.abilog.Debug().Msgf("req_method_set: invalid handle %d", handle)
		return int32(ErrInvalidHandle)
	}
	method, err := i.memory.ReadString(addr, size)
	if err != nil {
		return int32(ErrInvalidArgument)
	}
	i.abilog.Debug().Msgf("req_method_set: handle=%d method=%q", handle, method)
	// Validated at send time, together with the URI.
	r.method = method
	return int32(StatusOK)
}

func (i *Instance) reqURISet(handle, addr, size int32) int32 {
	r := i.requests.Get(int(handle))
	if r == nil {
		i.abilog.Debug().Msgf("req_uri_set: invalid handle %d", handle)
		return int32(ErrInvalidHandle)
	}
	uri, err := i.memory.ReadString(addr, size)
	if err != nil {
		return int32(ErrInvalidArgument)
	}
	i.abilog.Debug().Msgf("req_uri_set: handle=%d uri=%q", handle, uri)
	r.uri = uri
	return int32(StatusOK)
}

func (i *Instance) reqHeaderSet(handle, nameAddr, nameSize, valueAddr, valueSize int32) int32 {
	r := i.requests.Get(int(handle))
	if r == nil {
		return int32(ErrInvalidHandle)
	}
	name, err := i.memory.ReadString(nameAddr, nameSize)
	if err != nil {
		return int32(ErrInvalidArgument)
	}
	value, err := i.memory.ReadString(valueAddr, valueSize)
	if err != nil {
		return int32(ErrInvalidArgument)
	}
	i.abilog.Debug().Msgf("req_header_set: handle=%d %s=%q", handle, name, value)
	r.header.Add(name, value)
	return int32(StatusOK)
}

func (i *Instance) bodyNew(handleOut int32) int32 {
	bhid, _ := i.bodies.NewBuffer()
	i.abilog.Debug().Msgf("body_new: handle=%d", bhid)
	if err := i.memory.PutUint32(uint32(bhid), int64(handleOut)); err != nil {
		return int32(ErrGeneric)
	}
	return int32(StatusOK)
}

func (i *Instance) bodyWrite(handle, addr, size, nwrittenOut int32) int32 {
	body := i.bodies.Get(int(handle))
	if body == nil {
		return int32(ErrInvalidHandle)
	}
	if size < 0 {
		return int32(ErrInvalidArgument)
	}
	buf := make([]byte, size)
	if _, err := i.memory.ReadAt(buf, int64(addr)); err != nil {
		return int32(ErrInvalidArgument)
	}
	nwritten, err := body.Write(buf)
	if err != nil {
		return int32(ErrGeneric)
	}
	if err := i.memory.PutUint32(uint32(nwritten), int64(nwrittenOut)); err != nil {
		return int32(ErrGeneric)
	}
	return int32(StatusOK)
}

// bodyRead copies up to maxlen bytes of a body into guest memory. A zero
// nread with StatusOK means the stream is drained.
func (i *Instance) bodyRead(handle, addr, maxlen, nreadOut int32) int32 {
	body := i.bodies.Get(int(handle))
	if body == nil {
		return int32(ErrInvalidHandle)
	}
	if maxlen < 0 {
		return int32(ErrInvalidArgument)
	}

	buf := bytes.NewBuffer(make([]byte, 0, maxlen))
	ncopied, err := io.Copy(buf, io.LimitReader(body, int64(maxlen)))
	if err != nil {
		i.abilog.Debug().Msgf("body_read: copy error: %v", err)
		return int32(ErrGeneric)
	}
	if _, err := i.memory.WriteAt(buf.Bytes(), int64(addr)); err != nil {
		return int32(ErrGeneric)
	}
	if err := i.memory.PutUint32(uint32(ncopied), int64(nreadOut)); err != nil {
		return int32(ErrGeneric)
	}
	return int32(StatusOK)
}

func (i *Instance) bodyClose(handle int32) int32 {
	if err := i.bodies.Close(int(handle)); err != nil {
		return int32(ErrGeneric)
	}
	return int32(StatusOK)
}

// fetchSend issues the built request through a resolved fetcher handle. This
// is the invocation's only suspension point: the call blocks until the host
// transport completes or the invocation context is torn down. The credential
// behind the fetcher, if any, is presented during the handshake; nothing in
// the ABI names it.
func (i *Instance) fetchSend(fetcherHandle, reqHandle, bodyHandle, respHandleOut, respBodyHandleOut int32) int32 {
	fetcher := i.fetchers.Get(int(fetcherHandle))
	if fetcher == nil {
		i.abilog.Debug().Msgf("fetch_send: invalid fetcher handle %d", fetcherHandle)
		return int32(ErrInvalidHandle)
	}
	r := i.requests.Get(int(reqHandle))
	if r == nil {
		i.abilog.Debug().Msgf("fetch_send: invalid request handle %d", reqHandle)
		return int32(ErrInvalidHandle)
	}

	req := &bindlike.Request{
		Method: r.method,
		URL:    r.uri,
		Header: r.header,
	}
	if bodyHandle >= 0 {
		body := i.bodies.Get(int(bodyHandle))
		if body == nil {
			return int32(ErrInvalidHandle)
		}
		req.Body = body
	}
	canonical, err := req.IntoRequest()
	if err != nil {
		i.abilog.Debug().Msgf("fetch_send: invalid request: %v", err)
		return int32(ErrInvalidRequest)
	}

	capability, ok := fetcher.Capability()
	if !ok {
		return int32(ErrInvalidHandle)
	}

	i.abilog.Debug().Msgf("fetch_send: %s %s", canonical.Method, canonical.URL)
	resp, err := capability.FetchRequest(i.ctx, canonical)
	if err != nil {
		i.abilog.Debug().Msgf("fetch_send: transport failure: %v", err)
		return int32(ErrTransport)
	}

	respID := i.responses.Put(resp)
	var respBodyID int
	if resp.Body != nil {
		respBodyID, _ = i.bodies.NewReader(resp.Body)
	} else {
		respBodyID, _ = i.bodies.NewBuffer()
	}

	i.abilog.Debug().Msgf("fetch_send: status=%d resp=%d body=%d", resp.StatusCode, respID, respBodyID)
	if err := i.memory.PutUint32(uint32(respID), int64(respHandleOut)); err != nil {
		return int32(ErrGeneric)
	}
	if err := i.memory.PutUint32(uint32(respBodyID), int64(respBodyHandleOut)); err != nil {
		return int32(ErrGeneric)
	}
	return int32(StatusOK)
}

func (i *Instance) respStatusGet(handle, statusOut int32) int32 {
	resp := i.responses.Get(int(handle))
	if resp == nil {
		return int32(ErrInvalidHandle)
	}
	i.abilog.Debug().Msgf("resp_status_get: handle=%d status=%d", handle, resp.StatusCode)
	if err := i.memory.PutUint32(uint32(resp.StatusCode), int64(statusOut)); err != nil {
		return int32(ErrGeneric)
	}
	return int32(StatusOK)
}

// respHeaderGet copies the first value of the named response header. A zero
// nwritten with StatusOK means the header is absent.
func (i *Instance) respHeaderGet(handle, nameAddr, nameSize, bufAddr, bufMaxlen, nwrittenOut int32) int32 {
	resp := i.responses.Get(int(handle))
	if resp == nil {
		return int32(ErrInvalidHandle)
	}
	name, err := i.memory.ReadString(nameAddr, nameSize)
	if err != nil {
		return int32(ErrInvalidArgument)
	}
	value := resp.Header.Get(name)
	if len(value) > int(bufMaxlen) {
		return int32(ErrBufferLength)
	}
	nwritten, err := i.memory.WriteAt([]byte(value), int64(bufAddr))
	if err != nil {
		return int32(ErrGeneric)
	}
	if err := i.memory.PutUint32(uint32(nwritten), int64(nwrittenOut)); err != nil {
		return int32(ErrGeneric)
	}
	return int32(StatusOK)
}
