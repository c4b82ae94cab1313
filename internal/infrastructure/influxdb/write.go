package influxdb

import (
	"context"
	"fmt"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePoints writes one or more points to the configured bucket in a
// single blocking call.
//
// This is the monitor's record-write primitive: a cycle's power point and
// optional battery point go out together so the two series stay temporally
// coincident in the bucket, and the caller learns the outcome before the
// cycle ends.
//
// Parameters:
//   - ctx: Context for timeout/cancellation (aborts an in-flight write)
//   - points: 1 or more points, submitted as one request
//
// Returns:
//   - error: Wrapped ErrWriteFailed if the write does not reach the server
func (c *Client) WritePoints(ctx context.Context, points ...*write.Point) error {
	if len(points) == 0 {
		return nil
	}

	if err := c.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}

	return nil
}
