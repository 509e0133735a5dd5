package audio

// SfxEvent is a decoded sound-effect command.
type SfxEvent struct {
	Index   int32
	Channel int32
	Start   uint32
	End     uint32
}

// MusicEvent is a decoded music command.
type MusicEvent struct {
	Index  int32
	FadeMS int32
	Mask   int32
}

// sign-extend a 6-bit two's complement field
func signed6(v uint16) int32 {
	i := int32(v & 0x3F)
	if i&0x20 != 0 {
		i = -((^i & 0x3F) + 1)
	}
	return i
}

// DecodeSfx unpacks a sound-effect command word. length is the current
// value of the effect length register; a zero length means 32 notes.
func DecodeSfx(command, length uint16) SfxEvent {
	channel := int32(command >> 12 & 0x7)
	if channel&0x4 != 0 {
		channel = -((^channel & 0x7) + 1)
	}
	end := uint32(length & 0x3F)
	if end == 0 {
		end = 32
	}
	return SfxEvent{
		Index:   signed6(command),
		Channel: channel,
		Start:   uint32(command >> 6 & 0x3F),
		End:     end,
	}
}

// DecodeMusic unpacks a music command word. fade is the current fade
// time register; a zero channel mask means channels 0-2.
func DecodeMusic(command, fade uint16) MusicEvent {
	mask := int32(command >> 3 & 0xF)
	if mask == 0 {
		mask = 0x7
	}
	return MusicEvent{
		Index:  signed6(command >> 7),
		FadeMS: int32(fade),
		Mask:   mask,
	}
}
