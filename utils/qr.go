package utils

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QR payload formats. Tables encode "mesa_<number>" so a scan resolves the
// table's active order; the wait-list entry code is a fixed payload posted
// at the door.
const WaitlistEntryPayload = "ingreso_local"

func TableQRPayload(number int) string {
	return fmt.Sprintf("mesa_%d", number)
}

// QRPNG renders a payload as a 256x256 PNG.
func QRPNG(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, 256)
}
