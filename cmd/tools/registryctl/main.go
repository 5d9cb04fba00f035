// cmd/tools/registryctl/main.go
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

var baseURL string

func main() {
	reportCmd := flag.NewFlagSet("report", flag.ExitOnError)
	assignCmd := flag.NewFlagSet("assign", flag.ExitOnError)
	startCmd := flag.NewFlagSet("start", flag.ExitOnError)
	signCmd := flag.NewFlagSet("sign", flag.ExitOnError)
	archiveCmd := flag.NewFlagSet("archive", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	workerCmd := flag.NewFlagSet("worker", flag.ExitOnError)

	// Report command flags
	name := reportCmd.String("name", "", "Reporter name")
	email := reportCmd.String("email", "", "Reporter email")
	phone := reportCmd.String("phone", "", "Reporter phone (+370...)")
	address := reportCmd.String("address", "", "Fault address")
	faultType := reportCmd.String("type", "general", "Fault type (electricity, plumbing, renovation, general)")
	description := reportCmd.String("description", "", "Fault description")

	// Assign command flags
	assignFault := assignCmd.String("fault", "", "Fault ID")
	technician := assignCmd.String("technician", "", "Technician ID")

	// Start command flags
	startFault := startCmd.String("fault", "", "Fault ID")

	// Sign command flags
	signFault := signCmd.String("fault", "", "Fault ID")
	party := signCmd.String("party", "", "Signing party (technician or customer)")
	imagePath := signCmd.String("image", "", "Path to the signature PNG")

	// Archive command flags
	outPath := archiveCmd.String("out", "", "Output path for the zip bundle")

	// Worker command flags
	workerOp := workerCmd.String("op", "add", "Operation (add, rm, list)")
	workerID := workerCmd.String("id", "", "Worker ID (for rm)")
	workerName := workerCmd.String("name", "", "Worker name (for add)")
	workerEmail := workerCmd.String("email", "", "Worker email (for add)")
	specialties := workerCmd.String("specialties", "", "Comma-separated specialties (for add)")

	for _, fs := range []*flag.FlagSet{reportCmd, assignCmd, startCmd, signCmd, archiveCmd, listCmd, workerCmd} {
		fs.StringVar(&baseURL, "url", "http://localhost:8080", "Registry base URL")
	}

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "report":
		reportCmd.Parse(os.Args[2:])
		doReport(*name, *email, *phone, *address, *faultType, *description)
	case "assign":
		assignCmd.Parse(os.Args[2:])
		if *assignFault == "" || *technician == "" {
			fmt.Println("Error: fault and technician are required for assign.")
			assignCmd.Usage()
			os.Exit(1)
		}
		doAssign(*assignFault, *technician)
	case "start":
		startCmd.Parse(os.Args[2:])
		if *startFault == "" {
			fmt.Println("Error: fault is required for start.")
			startCmd.Usage()
			os.Exit(1)
		}
		doPost("/api/faults/"+*startFault+"/start", map[string]string{})
	case "sign":
		signCmd.Parse(os.Args[2:])
		if *signFault == "" || (*party != "technician" && *party != "customer") || *imagePath == "" {
			fmt.Println("Error: fault, party (technician|customer) and image are required for sign.")
			signCmd.Usage()
			os.Exit(1)
		}
		doSign(*signFault, *party, *imagePath)
	case "archive":
		archiveCmd.Parse(os.Args[2:])
		doArchive(*outPath)
	case "list":
		listCmd.Parse(os.Args[2:])
		doGet("/api/faults")
	case "worker":
		workerCmd.Parse(os.Args[2:])
		doWorker(*workerOp, *workerID, *workerName, *workerEmail, *specialties)
	default:
		help()
		os.Exit(1)
	}
}

func doReport(name, email, phone, address, faultType, description string) {
	doPost("/api/faults", map[string]string{
		"reporterName":  name,
		"reporterEmail": email,
		"reporterPhone": phone,
		"address":       address,
		"type":          faultType,
		"description":   description,
	})
}

func doAssign(faultID, technicianID string) {
	doPost("/api/faults/"+faultID+"/assign", map[string]string{
		"technicianId": technicianID,
	})
}

func doSign(faultID, party, imagePath string) {
	img, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Printf("Error reading signature image: %v\n", err)
		os.Exit(1)
	}
	doPost("/api/faults/"+faultID+"/signatures/"+party, map[string]string{
		"image": base64.StdEncoding.EncodeToString(img),
	})
}

func doArchive(outPath string) {
	resp, err := http.Post(baseURL+"/api/archive", "application/json", strings.NewReader("{}"))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		printBody(resp.Body)
		os.Exit(1)
	}

	if outPath == "" {
		cd := resp.Header.Get("Content-Disposition")
		outPath = strings.Trim(strings.TrimPrefix(cd, `attachment; filename=`), `"`)
		if outPath == "" {
			outPath = "aktai.zip"
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Printf("Error creating %s: %v\n", outPath, err)
		os.Exit(1)
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		fmt.Printf("Error writing bundle: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", outPath, n)
}

func doWorker(op, id, name, email, specialties string) {
	switch op {
	case "add":
		if name == "" || specialties == "" {
			fmt.Println("Error: name and specialties are required for worker add.")
			os.Exit(1)
		}
		doPost("/api/workers", map[string]interface{}{
			"name":        name,
			"email":       email,
			"specialties": strings.Split(specialties, ","),
		})
	case "rm":
		if id == "" {
			fmt.Println("Error: id is required for worker rm.")
			os.Exit(1)
		}
		req, err := http.NewRequest(http.MethodDelete, baseURL+"/api/workers/"+id, nil)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		fmt.Printf("Status: %s\n", resp.Status)
	case "list":
		doGet("/api/workers")
	default:
		fmt.Printf("Unknown worker operation: %s\n", op)
		os.Exit(1)
	}
}

func doPost(path string, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	resp, err := http.Post(baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printBody(resp.Body)
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func doGet(path string) {
	resp, err := http.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printBody(resp.Body)
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func printBody(r io.Reader) {
	raw, err := io.ReadAll(r)
	if err != nil {
		fmt.Printf("Error reading response: %v\n", err)
		return
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		fmt.Println(string(raw))
		return
	}
	fmt.Println(pretty.String())
}

func help() {
	fmt.Println(`Usage: registryctl <command> [flags]

Commands:
  report    Register a new fault
  assign    Assign a technician to a fault
  start     Mark work on a fault as started
  sign      Capture a technician or customer signature
  archive   Download the completed-acts bundle
  list      List faults
  worker    Manage the technician roster (-op add|rm|list)

Run 'registryctl <command> -h' for command flags.`)
}
