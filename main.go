// Command salesdash builds an Excel sales dashboard from a workbook export.
package main

import "github.com/klytics/salesdash/cmd"

func main() {
	cmd.Execute()
}
