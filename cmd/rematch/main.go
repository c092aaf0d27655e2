// Command rematch parses text lines into typed records described by a YAML
// schema of regular-expression patterns.
package main

func main() {
	Execute()
}
