// Package docker talks to the Docker daemon and the docker compose CLI on
// behalf of a conductor project.
//
// Client lists the containers compose created for a project, found through
// the com.docker.compose.project label. ComposeClient runs docker compose
// against the pod files written by output, always passing the project name
// with -p so every pod file joins the same compose project.
//
// # Example
//
//	cli, err := docker.NewClient()
//	if err != nil {
//	    return err
//	}
//	defer cli.Close()
//
//	containers, err := cli.ProjectContainers(ctx, "rails_hello")
//	for _, c := range containers {
//	    fmt.Printf("%s/%s: %s\n", c.Pod, c.Service, c.Status)
//	}
package docker
