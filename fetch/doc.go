// Package fetch materializes remote files into a local filesystem.
//
// A Source retrieves the raw bytes behind a URL. HTTPSource serves http and
// https URLs, S3Source serves s3://bucket/key URLs, and Router dispatches on
// the URL scheme.
//
// A Fetcher runs one Task at a time per call and is safe for concurrent use:
//
//	task, err := fetch.NewTask(fsys, "mods/c.jar", url, sum)
//	if err != nil {
//	    return err
//	}
//	err = fetcher.Run(ctx, task, reporter)
//
// Run retries transport failures with linear backoff (see RetryPolicy),
// verifies the downloaded bytes against the expected digest and only then
// writes them. Any failure removes the destination file so that no unverified
// content is left behind.
package fetch
