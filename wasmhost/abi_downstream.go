package wasmhost

func (i *Instance) downstreamMethodGet(bufAddr, bufMaxlen, nwrittenOut int32) int32 {
	return i.putString(i.ds.method, bufAddr, bufMaxlen, nwrittenOut)
}

func (i *Instance) downstreamURIGet(bufAddr, bufMaxlen, nwrittenOut int32) int32 {
	return i.putString(i.ds.uri, bufAddr, bufMaxlen, nwrittenOut)
}

// downstreamRespond records the status and body the guest chose for the
// incoming request. Last call wins; the host writes it out after _start
// returns.
func (i *Instance) downstreamRespond(status, bodyHandle int32) int32 {
	if status < 100 || status > 999 {
		return int32(ErrInvalidArgument)
	}
	if bodyHandle >= 0 && i.bodies.Get(int(bodyHandle)) == nil {
		return int32(ErrInvalidHandle)
	}
	i.abilog.Debug().Msgf("respond: status=%d body=%d", status, bodyHandle)
	i.ds.status = int(status)
	i.ds.bodyHandle = int(bodyHandle)
	i.ds.responded = true
	return int32(StatusOK)
}

func (i *Instance) putString(s string, bufAddr, bufMaxlen, nwrittenOut int32) int32 {
	if len(s) > int(bufMaxlen) {
		return int32(ErrBufferLength)
	}
	nwritten, err := i.memory.WriteAt([]byte(s), int64(bufAddr))
	if err != nil {
		return int32(ErrGeneric)
	}
	if err := i.memory.PutUint32(uint32(nwritten), int64(nwrittenOut)); err != nil {
		return int32(ErrGeneric)
	}
	return int32(StatusOK)
}
