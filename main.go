package main

import "github.com/justformeokay/Karir-Nusantara-Company-sub000/cmd"

func main() {
	cmd.Execute()
}
