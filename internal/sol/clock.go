package sol

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/yimingwow/scavenger/internal/xerrors"
)

// ClockAccountDataSize is the fixed size of the sysvar clock account.
const ClockAccountDataSize = 40

// Clock mirrors the Solana network's sysvar clock account.
type Clock struct {
	Slot                uint64
	EpochStartTime      uint64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       uint64
}

// GetClock retrieves and decodes the current sysvar clock account.
func (c *Client) GetClock(ctx context.Context) (*Clock, error) {
	resp, err := c.GetAccountInfoWithOpts(ctx, solana.SysVarClockPubkey)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch clock account: %v", xerrors.ErrTransport, err)
	}
	if resp.Value == nil {
		return nil, fmt.Errorf("%w: clock account not found", xerrors.ErrTransport)
	}

	data := resp.Value.Data.GetBinary()
	if len(data) != ClockAccountDataSize {
		return nil, fmt.Errorf("%w: clock account length %d, expected %d", xerrors.ErrMalformed, len(data), ClockAccountDataSize)
	}

	return &Clock{
		Slot:                binary.LittleEndian.Uint64(data[0:8]),
		EpochStartTime:      binary.LittleEndian.Uint64(data[8:16]),
		Epoch:               binary.LittleEndian.Uint64(data[16:24]),
		LeaderScheduleEpoch: binary.LittleEndian.Uint64(data[24:32]),
		UnixTimestamp:       binary.LittleEndian.Uint64(data[32:40]),
	}, nil
}
